// Package session implements cookie-backed sessions and one-shot flash
// messages. The cookie only ever carries an opaque session id; the user id
// and pending flashes live server-side, in Redis when available and in
// process memory otherwise.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "portal_session"

// ErrNotFound is returned for missing, expired or destroyed sessions.
var ErrNotFound = errors.New("session not found")

// Flash is a transient message shown on the next rendered page only.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Store is the server-side session backend.
type Store interface {
	// Create opens a session for the user and returns its opaque id.
	Create(ctx context.Context, userID uint64) (string, error)
	// Get resolves a session id to the logged-in user id.
	Get(ctx context.Context, sid string) (uint64, error)
	// Destroy removes the session. Destroying an unknown id is not an error.
	Destroy(ctx context.Context, sid string) error
	// AddFlash appends a flash message to the session.
	AddFlash(ctx context.Context, sid string, f Flash) error
	// PopFlashes returns all pending flashes and clears them.
	PopFlashes(ctx context.Context, sid string) ([]Flash, error)
}

// SetCookie attaches the session cookie to the response. The cookie is
// marked Secure when the request arrived over TLS, directly or behind a
// proxy that set X-Forwarded-Proto.
func SetCookie(w http.ResponseWriter, r *http.Request, sid string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func secureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Package middleware provides the request-processing chain shared by all
// portal routes: identity resolution, the capability gate and rate limiting.
package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coworkhq/member-portal/internal/model"
	"github.com/coworkhq/member-portal/internal/session"
	"github.com/coworkhq/member-portal/internal/utils"
)

// Context keys set by the identity middleware.
const (
	ctxUserKey      = "current_user"
	ctxSessionIDKey = "session_id"
)

// UserLoader resolves a user id to a full user record.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// Identity resolves the caller from the session cookie, falling back to a
// Bearer access token for non-browser clients, and stores the user in the
// request context. Anonymous requests pass through untouched; route-level
// guards decide whether that is acceptable.
func Identity(store session.Store, users UserLoader, jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
				if userID, err := store.Get(ctx, cookie.Value); err == nil {
					if u, err := users.GetByID(ctx, userID); err == nil {
						c.Set(ctxUserKey, u)
						c.Set(ctxSessionIDKey, cookie.Value)
						return next(c)
					}
				}
				// Stale cookie for a destroyed or expired session.
				session.ClearCookie(c.Response())
			}

			if auth := c.Request().Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
				if userID, err := utils.ParseAccessToken(jwtSecret, auth[7:]); err == nil {
					if u, err := users.GetByID(ctx, userID); err == nil {
						c.Set(ctxUserKey, u)
					}
				}
			}
			return next(c)
		}
	}
}

// RequireAuth redirects anonymous requests to the login page.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	if u, ok := c.Get(ctxUserKey).(*model.User); ok {
		return u
	}
	return nil
}

// SessionID returns the caller's session id, or "" for cookie-less callers.
func SessionID(c echo.Context) string {
	if sid, ok := c.Get(ctxSessionIDKey).(string); ok {
		return sid
	}
	return ""
}

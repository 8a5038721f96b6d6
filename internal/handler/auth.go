// Package handler contains the HTTP endpoints of the member portal. Handlers
// bind and validate request payloads, call the stores, and translate store
// outcomes into status codes; policy decisions live in the middleware and
// authz packages.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/coworkhq/member-portal/internal/config"
	"github.com/coworkhq/member-portal/internal/form"
	"github.com/coworkhq/member-portal/internal/middleware"
	"github.com/coworkhq/member-portal/internal/model"
	"github.com/coworkhq/member-portal/internal/notify"
	"github.com/coworkhq/member-portal/internal/repository"
	"github.com/coworkhq/member-portal/internal/session"
	"github.com/coworkhq/member-portal/internal/utils"
)

// AuthHandler serves registration, login, logout and the password reset flow.
type AuthHandler struct {
	cfg      config.Config
	users    UserStore
	tokens   ResetTokenStore
	sessions session.Store
	notifier Notify
	audit    AuditSink
	log      *zap.Logger
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens ResetTokenStore,
	sessions session.Store, notifier Notify, audit AuditSink, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		notifier: notifier,
		audit:    audit,
		log:      log,
	}
}

// Register creates a customer account and logs the new member in.
func (h *AuthHandler) Register(c echo.Context) error {
	var f form.RegisterForm
	if err := c.Bind(&f); err != nil {
		return fieldErrors(c, map[string]string{"form": "invalid request"})
	}
	if err := c.Validate(&f); err != nil {
		return fieldErrors(c, form.FieldErrors(err))
	}
	if !f.PasswordsMatch() {
		return fieldErrors(c, map[string]string{"confirm_password": "passwords do not match"})
	}
	// The terms checkbox is only required when a terms document is actually
	// published.
	if h.cfg.HasTermsOfServiceURL() && !f.TermsAgreed {
		return fieldErrors(c, map[string]string{"terms_agreed": "you must agree to the terms of service"})
	}

	hash, err := utils.HashPassword(f.Password, h.cfg.BcryptCost)
	if err != nil {
		return internalError(c, h.log, "hash password", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.users.Create(ctx, f.Username, f.Email, hash, model.RoleCustomer)
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"errors": map[string]string{"username": "this username is already taken"}})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"errors": map[string]string{"email": "this email is already registered"}})
	case err != nil:
		return internalError(c, h.log, "create user", err)
	}

	u, err := h.users.GetByID(ctx, id)
	if err != nil {
		return internalError(c, h.log, "load created user", err)
	}

	token, err := h.establishSession(c, u)
	if err != nil {
		return internalError(c, h.log, "establish session", err)
	}

	meta := notify.MetaFromRequest(c.Request())
	h.notifier.Enqueue(notify.UserRegistered(u, meta))
	publishAudit(h.audit, "user.registered", u, "new member registration", meta)

	return c.JSON(http.StatusCreated, echo.Map{
		"user":         u,
		"access_token": token,
	})
}

// Login verifies credentials and opens a session. Failures are reported with
// one generic message; whether the username exists is never revealed.
func (h *AuthHandler) Login(c echo.Context) error {
	var f form.LoginForm
	if err := c.Bind(&f); err != nil {
		return fieldErrors(c, map[string]string{"form": "invalid request"})
	}
	if err := c.Validate(&f); err != nil {
		return fieldErrors(c, form.FieldErrors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.users.GetByUsername(ctx, f.Username)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !utils.VerifyPassword(u.PasswordHash, f.Password)) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid username or password"})
	}
	if err != nil {
		return internalError(c, h.log, "load user for login", err)
	}

	token, err := h.establishSession(c, u)
	if err != nil {
		return internalError(c, h.log, "establish session", err)
	}

	meta := notify.MetaFromRequest(c.Request())
	h.notifier.Enqueue(notify.UserLogin(u, meta))
	publishAudit(h.audit, "user.login", u, "member login", meta)

	return c.JSON(http.StatusOK, echo.Map{
		"user":         u,
		"access_token": token,
	})
}

// Logout destroys the caller's session and expires the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid := middleware.SessionID(c); sid != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		if err := h.sessions.Destroy(ctx, sid); err != nil {
			h.log.Warn("destroy session", zap.Error(err))
		}
	}
	session.ClearCookie(c.Response())
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword starts the reset flow. The response is identical whether or
// not the email belongs to an account, so the endpoint cannot be used to
// enumerate members.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var f form.ForgotPasswordForm
	if err := c.Bind(&f); err != nil {
		return fieldErrors(c, map[string]string{"form": "invalid request"})
	}
	if err := c.Validate(&f); err != nil {
		return fieldErrors(c, form.FieldErrors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, f.Email)
	if err == nil {
		// Requesting a new link invalidates every earlier one for the user.
		if err := h.tokens.InvalidateForUser(ctx, u.ID); err != nil {
			return internalError(c, h.log, "invalidate reset tokens", err)
		}
		t := model.NewPasswordResetToken(u.ID)
		if err := h.tokens.Insert(ctx, t); err != nil {
			return internalError(c, h.log, "insert reset token", err)
		}
		h.notifier.Enqueue(notify.PasswordReset(u, t.Token, requestBaseURL(c)))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return internalError(c, h.log, "look up user by email", err)
	}

	// Opportunistic housekeeping; a failed purge is not the caller's problem.
	if _, err := h.tokens.PurgeExpired(ctx, time.Now()); err != nil {
		h.log.Warn("purge expired reset tokens", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "If an account with that email exists, password reset instructions have been sent",
	})
}

// CheckResetToken lets the reset form verify a link before showing the
// password fields.
func (h *AuthHandler) CheckResetToken(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		return fieldErrors(c, map[string]string{"token": "this field is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.tokens.FindUnused(ctx, raw)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "This password reset link is invalid or has expired"})
	}
	if err != nil {
		return internalError(c, h.log, "look up reset token", err)
	}
	if !t.IsValid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "This password reset link is invalid or has expired"})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// ResetPassword completes the flow: a valid unused token lets the user set a
// new password, and the token is burned whether it was close to expiry or
// not.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var f form.ResetPasswordForm
	if err := c.Bind(&f); err != nil {
		return fieldErrors(c, map[string]string{"form": "invalid request"})
	}
	if err := c.Validate(&f); err != nil {
		return fieldErrors(c, form.FieldErrors(err))
	}
	if !f.PasswordsMatch() {
		return fieldErrors(c, map[string]string{"confirm_password": "passwords do not match"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.tokens.FindUnused(ctx, f.Token)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "This password reset link is invalid or has expired"})
	}
	if err != nil {
		return internalError(c, h.log, "look up reset token", err)
	}
	if !t.IsValid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "This password reset link is invalid or has expired"})
	}

	hash, err := utils.HashPassword(f.NewPassword, h.cfg.BcryptCost)
	if err != nil {
		return internalError(c, h.log, "hash password", err)
	}
	if err := h.users.UpdatePassword(ctx, t.UserID, hash); err != nil {
		return internalError(c, h.log, "update password", err)
	}
	if err := h.tokens.MarkUsed(ctx, t.ID); err != nil {
		return internalError(c, h.log, "mark reset token used", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Your password has been reset. Please log in."})
}

// establishSession opens a server-side session, sets the cookie and mints a
// bearer token for API clients; login and registration share it.
func (h *AuthHandler) establishSession(c echo.Context, u *model.User) (utils.AccessToken, error) {
	sid, err := h.sessions.Create(c.Request().Context(), u.ID)
	if err != nil {
		return utils.AccessToken{}, err
	}
	session.SetCookie(c.Response(), c.Request(), sid, h.cfg.SessionTTL)
	return utils.NewAccessToken(h.cfg.JWTSecret, u.ID, string(u.Role), h.cfg.AccessTTLMin)
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/coworkhq/member-portal/internal/config"
	"github.com/coworkhq/member-portal/internal/form"
	"github.com/coworkhq/member-portal/internal/middleware"
	"github.com/coworkhq/member-portal/internal/model"
	"github.com/coworkhq/member-portal/internal/notify"
	"github.com/coworkhq/member-portal/internal/repository"
	"github.com/coworkhq/member-portal/internal/utils"
)

// UserHandler serves the admin/staff user management endpoints.
type UserHandler struct {
	cfg      config.Config
	users    UserStore
	notifier Notify
	audit    AuditSink
	log      *zap.Logger
}

func NewUserHandler(cfg config.Config, users UserStore, notifier Notify, audit AuditSink, log *zap.Logger) *UserHandler {
	return &UserHandler{cfg: cfg, users: users, notifier: notifier, audit: audit, log: log}
}

// List returns every portal account, newest first.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.users.FindAll(ctx)
	if err != nil {
		return internalError(c, h.log, "list users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// CreateStaff creates a STAFF account. Unlike self-registration it does not
// log the new account in or send a welcome mail; the admin hands over the
// credentials out of band.
func (h *UserHandler) CreateStaff(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	var f form.CreateStaffForm
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

	// Pre-check uniqueness for friendlier errors; the unique keys still
	// backstop concurrent creations via the duplicate mapping below.
	if taken, err := h.users.ExistsByUsername(ctx, f.Username); err != nil {
		return internalError(c, h.log, "check username", err)
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"errors": map[string]string{"username": "this username is already taken"}})
	}
	if taken, err := h.users.ExistsByEmail(ctx, f.Email); err != nil {
		return internalError(c, h.log, "check email", err)
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"errors": map[string]string{"email": "this email is already registered"}})
	}

	hash, err := utils.HashPassword(f.Password, h.cfg.BcryptCost)
	if err != nil {
		return internalError(c, h.log, "hash password", err)
	}

	id, err := h.users.Create(ctx, f.Username, f.Email, hash, model.RoleStaff)
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"errors": map[string]string{"username": "this username is already taken"}})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"errors": map[string]string{"email": "this email is already registered"}})
	case err != nil:
		return internalError(c, h.log, "create staff user", err)
	}

	staff, err := h.users.GetByID(ctx, id)
	if err != nil {
		return internalError(c, h.log, "load created staff user", err)
	}

	meta := notify.MetaFromRequest(c.Request())
	h.notifier.Enqueue(notify.StaffCreated(actor, staff, meta))
	publishAudit(h.audit, "user.staff_created", actor, "created staff user "+staff.Username, meta)

	return c.JSON(http.StatusCreated, echo.Map{"user": staff})
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/coworkhq/member-portal/internal/form"
	"github.com/coworkhq/member-portal/internal/middleware"
	"github.com/coworkhq/member-portal/internal/model"
	"github.com/coworkhq/member-portal/internal/notify"
	"github.com/coworkhq/member-portal/internal/repository"
)

// EquipmentHandler serves the staff-facing equipment inventory.
type EquipmentHandler struct {
	equipment EquipmentStore
	notifier  Notify
	audit     AuditSink
	log       *zap.Logger
}

func NewEquipmentHandler(equipment EquipmentStore, notifier Notify, audit AuditSink, log *zap.Logger) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment, notifier: notifier, audit: audit, log: log}
}

// List returns the full inventory plus the valid categories, so clients can
// render the category selector without hardcoding it.
func (h *EquipmentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.equipment.FindAll(ctx)
	if err != nil {
		return internalError(c, h.log, "list equipment", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"equipment":  items,
		"categories": model.Categories(),
	})
}

// Get returns a single equipment record.
func (h *EquipmentHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.equipment.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
	}
	if err != nil {
		return internalError(c, h.log, "load equipment", err)
	}
	return c.JSON(http.StatusOK, e)
}

// Create registers a new piece of equipment.
func (h *EquipmentHandler) Create(c echo.Context) error {
	e, ok, resp := h.bindEquipment(c)
	if !ok {
		return resp
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.equipment.Create(ctx, e)
	if err != nil {
		return internalError(c, h.log, "create equipment", err)
	}
	e.ID = id

	h.notifyOperation(c, e.Name, "registered")
	return c.JSON(http.StatusCreated, e)
}

// Update overwrites an existing equipment record.
func (h *EquipmentHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}

	e, ok, resp := h.bindEquipment(c)
	if !ok {
		return resp
	}
	e.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.equipment.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return internalError(c, h.log, "update equipment", err)
	}

	h.notifyOperation(c, e.Name, "updated")
	return c.JSON(http.StatusOK, e)
}

// Delete removes an equipment record. The reservation foreign key protects
// history: equipment that was ever reserved cannot be deleted and the
// attempt is reported as a conflict.
func (h *EquipmentHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// The name is fetched first so the deletion notice can say what was
	// deleted.
	e, err := h.equipment.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
	}
	if err != nil {
		return internalError(c, h.log, "load equipment", err)
	}

	deleted, err := h.equipment.Delete(ctx, id)
	if errors.Is(err, repository.ErrEquipmentInUse) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "equipment has reservations and cannot be deleted"})
	}
	if err != nil {
		return internalError(c, h.log, "delete equipment", err)
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
	}

	h.notifyOperation(c, e.Name, "deleted")
	return c.NoContent(http.StatusNoContent)
}

// bindEquipment binds, validates and converts the shared create/update
// payload. On failure it returns ok=false and the response already written.
func (h *EquipmentHandler) bindEquipment(c echo.Context) (*model.Equipment, bool, error) {
	var f form.EquipmentForm
	if err := c.Bind(&f); err != nil {
		return nil, false, fieldErrors(c, map[string]string{"form": "invalid request"})
	}
	if err := c.Validate(&f); err != nil {
		return nil, false, fieldErrors(c, form.FieldErrors(err))
	}
	price, ok := f.Price()
	if !ok {
		return nil, false, fieldErrors(c, map[string]string{"purchase_price": "must be a non-negative number"})
	}
	e := &model.Equipment{
		Name:          f.Name,
		PurchasePrice: price,
		Description:   f.Description,
		Category:      f.CategoryValue(),
	}
	return e, true, nil
}

func (h *EquipmentHandler) notifyOperation(c echo.Context, name, action string) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return
	}
	meta := notify.MetaFromRequest(c.Request())
	h.notifier.Enqueue(notify.EquipmentOperation(u, name, action, meta))
	publishAudit(h.audit, "equipment."+action, u, name, meta)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/coworkhq/member-portal/internal/form"
	"github.com/coworkhq/member-portal/internal/middleware"
	"github.com/coworkhq/member-portal/internal/model"
	"github.com/coworkhq/member-portal/internal/notify"
	"github.com/coworkhq/member-portal/internal/repository"
)

// ReservationHandler serves per-day equipment reservations for members and
// the active overview for staff.
type ReservationHandler struct {
	reservations ReservationStore
	equipment    EquipmentStore
	notifier     Notify
	audit        AuditSink
	log          *zap.Logger

	// now is swapped out in tests to pin the past-date check.
	now func() time.Time
}

func NewReservationHandler(reservations ReservationStore, equipment EquipmentStore,
	notifier Notify, audit AuditSink, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		equipment:    equipment,
		notifier:     notifier,
		audit:        audit,
		log:          log,
		now:          time.Now,
	}
}

// Index returns the reservation page data: the inventory to pick from and
// the caller's own reservations, active and cancelled.
func (h *ReservationHandler) Index(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.equipment.FindAll(ctx)
	if err != nil {
		return internalError(c, h.log, "list equipment", err)
	}
	mine, err := h.reservations.FindByUser(ctx, u.ID)
	if err != nil {
		return internalError(c, h.log, "list reservations", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"equipment":    items,
		"reservations": mine,
	})
}

// Create reserves a piece of equipment for a whole day. The availability
// check and the insert are separate statements; the rare concurrent
// double-booking is accepted rather than locked against.
func (h *ReservationHandler) Create(c echo.Context) error {
	u := middleware.CurrentUser(c)

	var f form.ReservationForm
	if err := c.Bind(&f); err != nil {
		return fieldErrors(c, map[string]string{"form": "invalid request"})
	}
	if err := c.Validate(&f); err != nil {
		return fieldErrors(c, form.FieldErrors(err))
	}
	date, ok := f.Date(h.now())
	if !ok {
		return fieldErrors(c, map[string]string{"reservation_date": "enter a valid date that is not in the past"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.equipment.GetByID(ctx, f.EquipmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
	}
	if err != nil {
		return internalError(c, h.log, "load equipment", err)
	}

	free, err := h.reservations.IsAvailable(ctx, e.ID, date)
	if err != nil {
		return internalError(c, h.log, "check availability", err)
	}
	if !free {
		return c.JSON(http.StatusConflict, echo.Map{"error": "This equipment is already reserved for the selected date"})
	}

	id, err := h.reservations.Create(ctx, e.ID, u.ID, date)
	if err != nil {
		return internalError(c, h.log, "create reservation", err)
	}

	meta := notify.MetaFromRequest(c.Request())
	h.notifier.Enqueue(notify.ReservationOperation(u, e.Name, "reserved", meta))
	publishAudit(h.audit, "reservation.reserved", u, e.Name+" on "+date.Format(model.DateLayout), meta)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": model.EquipmentReservation{
			ID:              id,
			EquipmentID:     e.ID,
			UserID:          u.ID,
			ReservationDate: date,
			Status:          model.ReservationActive,
		},
		"equipment_name": e.Name,
	})
}

// Cancel flips one of the caller's own active reservations to CANCELLED.
// Someone else's reservation, an already-cancelled one and an unknown id all
// look the same: not found.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	u := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cancelled, err := h.reservations.Cancel(ctx, id, u.ID)
	if err != nil {
		return internalError(c, h.log, "cancel reservation", err)
	}
	if !cancelled {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	meta := notify.MetaFromRequest(c.Request())
	h.notifier.Enqueue(notify.ReservationOperation(u, "reservation #"+strconv.FormatUint(id, 10), "cancelled", meta))
	publishAudit(h.audit, "reservation.cancelled", u, "reservation #"+strconv.FormatUint(id, 10), meta)

	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation cancelled"})
}

// Active returns every active reservation across all members, for staff.
func (h *ReservationHandler) Active(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.reservations.FindActive(ctx)
	if err != nil {
		return internalError(c, h.log, "list active reservations", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

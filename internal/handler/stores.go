package handler

import (
	"context"
	"time"

	"github.com/coworkhq/member-portal/internal/model"
	"github.com/coworkhq/member-portal/internal/notify"
	"github.com/coworkhq/member-portal/internal/queue"
	"github.com/coworkhq/member-portal/internal/repository"
)

// The handlers depend on narrow store interfaces rather than the concrete
// repositories so tests can substitute fakes. The repository types satisfy
// these interfaces.

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string, role model.Role) (uint64, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
}

type EquipmentStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Equipment, error)
	FindAll(ctx context.Context) ([]model.Equipment, error)
	Create(ctx context.Context, e *model.Equipment) (uint64, error)
	Update(ctx context.Context, e *model.Equipment) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

type ReservationStore interface {
	IsAvailable(ctx context.Context, equipmentID uint64, date time.Time) (bool, error)
	Create(ctx context.Context, equipmentID, userID uint64, date time.Time) (uint64, error)
	FindByUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
	FindActive(ctx context.Context) ([]repository.ReservationDetail, error)
	Cancel(ctx context.Context, id, userID uint64) (bool, error)
}

type ResetTokenStore interface {
	Insert(ctx context.Context, t *model.PasswordResetToken) error
	FindUnused(ctx context.Context, token string) (*model.PasswordResetToken, error)
	InvalidateForUser(ctx context.Context, userID uint64) error
	MarkUsed(ctx context.Context, id uint64) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Notify is the fire-and-forget notification entry point.
type Notify interface {
	Enqueue(n notify.Notification)
}

// AuditSink publishes audit events; errors are the sink's problem.
type AuditSink interface {
	Publish(ctx context.Context, event queue.AuditEvent) error
}

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/coworkhq/member-portal/internal/model"
)

// ReservationRepo provides access to the equipment_reservation table.
//
// The one-active-reservation-per-(equipment, date) rule is enforced by
// IsAvailable followed by Create, with no transaction and no unique key, so
// two concurrent requests for the same slot can both succeed. That matches
// the portal's original semantics; the schema notes the gap.
type ReservationRepo struct{ db *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationDetail is a reservation joined with its equipment name for the
// member's reservation list.
type ReservationDetail struct {
	model.EquipmentReservation
	EquipmentName string `json:"equipment_name"`
}

// IsAvailable reports whether no ACTIVE reservation exists for the
// equipment on the given date.
func (r *ReservationRepo) IsAvailable(ctx context.Context, equipmentID uint64, date time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM equipment_reservation
		 WHERE equipment_id=? AND reservation_date=? AND status=?`,
		equipmentID, date.Format(model.DateLayout), string(model.ReservationActive)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Create inserts an ACTIVE reservation and returns its id.
func (r *ReservationRepo) Create(ctx context.Context, equipmentID, userID uint64, date time.Time) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO equipment_reservation (equipment_id, user_id, reservation_date, status) VALUES (?,?,?,?)",
		equipmentID, userID, date.Format(model.DateLayout), string(model.ReservationActive))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByUser returns the member's reservations, newest date first, with the
// equipment name joined in.
func (r *ReservationRepo) FindByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.equipment_id, r.user_id, r.reservation_date, r.status, r.created_at, r.updated_at, e.name
		 FROM equipment_reservation r
		 JOIN equipment e ON e.id = r.equipment_id
		 WHERE r.user_id=?
		 ORDER BY r.reservation_date DESC, r.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

// FindActive returns every ACTIVE reservation, for staff overviews.
func (r *ReservationRepo) FindActive(ctx context.Context) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.equipment_id, r.user_id, r.reservation_date, r.status, r.created_at, r.updated_at, e.name
		 FROM equipment_reservation r
		 JOIN equipment e ON e.id = r.equipment_id
		 WHERE r.status=?
		 ORDER BY r.reservation_date DESC, r.id DESC`, string(model.ReservationActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

func scanDetails(rows *sql.Rows) ([]ReservationDetail, error) {
	var list []ReservationDetail
	for rows.Next() {
		var d ReservationDetail
		var status string
		if err := rows.Scan(&d.ID, &d.EquipmentID, &d.UserID, &d.ReservationDate, &status,
			&d.CreatedAt, &d.UpdatedAt, &d.EquipmentName); err != nil {
			return nil, err
		}
		d.Status = model.ReservationStatus(status)
		list = append(list, d)
	}
	return list, rows.Err()
}

// Cancel flips a reservation to CANCELLED, but only when it belongs to the
// given user and is still ACTIVE. Returns whether anything changed.
func (r *ReservationRepo) Cancel(ctx context.Context, id, userID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE equipment_reservation SET status=? WHERE id=? AND user_id=? AND status=?",
		string(model.ReservationCancelled), id, userID, string(model.ReservationActive))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

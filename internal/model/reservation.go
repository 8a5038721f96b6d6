package model

import "time"

// ReservationStatus is the lifecycle state of a reservation. The only
// transition is ACTIVE -> CANCELLED.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// DateLayout is the wire and storage format for reservation dates.
const DateLayout = "2006-01-02"

// EquipmentReservation mirrors the 'equipment_reservation' table. It binds
// one piece of equipment to one user for a single calendar day.
type EquipmentReservation struct {
	ID              uint64            `json:"id"`
	EquipmentID     uint64            `json:"equipment_id"`
	UserID          uint64            `json:"user_id"`
	ReservationDate time.Time         `json:"reservation_date"`
	Status          ReservationStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (r *EquipmentReservation) IsActive() bool    { return r.Status == ReservationActive }
func (r *EquipmentReservation) IsCancelled() bool { return r.Status == ReservationCancelled }

package repository

import "errors"

var (
	// ErrUsernameExists is returned when an insert collides on app_user.username.
	ErrUsernameExists = errors.New("username already exists")
	// ErrEmailExists is returned when an insert collides on app_user.email.
	ErrEmailExists = errors.New("email already exists")
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrEquipmentInUse is returned when deleting equipment that reservations
	// still reference.
	ErrEquipmentInUse = errors.New("equipment is referenced by reservations")
)

package model

import (
	"strings"
	"time"
)

// Role determines what a member is allowed to do in the portal.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

// RoleFromString maps free-form input onto a known role. Unknown or empty
// input falls back to CUSTOMER.
func RoleFromString(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleStaff:
		return RoleStaff
	default:
		return RoleCustomer
	}
}

// User mirrors the 'app_user' table. PasswordHash only ever holds a bcrypt
// hash; plaintext passwords never leave the registration/login handlers.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsStaff() bool    { return u.Role == RoleStaff }
func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }

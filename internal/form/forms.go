// Package form defines the request payloads the portal binds and validates.
// Structural rules live in validator tags; cross-field and parse rules that
// tags cannot express (price sign, date parsing, category coercion) are
// methods on the form.
package form

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coworkhq/member-portal/internal/model"
)

type LoginForm struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RegisterForm struct {
	Username        string `json:"username" form:"username" validate:"required,max=255"`
	Email           string `json:"email" form:"email" validate:"required,email,max=255"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
	TermsAgreed     bool   `json:"terms_agreed" form:"terms_agreed"`
}

func (f *RegisterForm) PasswordsMatch() bool {
	return f.Password != "" && f.Password == f.ConfirmPassword
}

type CreateStaffForm struct {
	Username        string `json:"username" form:"username" validate:"required,max=255"`
	Email           string `json:"email" form:"email" validate:"required,email,max=255"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
}

func (f *CreateStaffForm) PasswordsMatch() bool {
	return f.Password != "" && f.Password == f.ConfirmPassword
}

type ForgotPasswordForm struct {
	Email string `json:"email" form:"email" validate:"required,email,max=255"`
}

type ResetPasswordForm struct {
	Token           string `json:"token" form:"token" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
}

func (f *ResetPasswordForm) PasswordsMatch() bool {
	return f.NewPassword != "" && f.NewPassword == f.ConfirmPassword
}

type EquipmentForm struct {
	Name          string `json:"name" form:"name" validate:"required,max=255"`
	PurchasePrice string `json:"purchase_price" form:"purchase_price" validate:"required"`
	Description   string `json:"description" form:"description" validate:"max=1000"`
	Category      string `json:"category" form:"category" validate:"required"`
}

// Price parses the submitted price. A non-numeric or negative value is a
// validation error; the caller reports it on the purchase_price field.
func (f *EquipmentForm) Price() (decimal.Decimal, bool) {
	p, err := decimal.NewFromString(f.PurchasePrice)
	if err != nil || p.IsNegative() {
		return decimal.Zero, false
	}
	return p, true
}

// CategoryValue coerces the submitted category; unknown strings become
// OTHER rather than failing.
func (f *EquipmentForm) CategoryValue() model.Category {
	return model.CategoryFromString(f.Category)
}

type ReservationForm struct {
	EquipmentID     uint64 `json:"equipment_id" form:"equipment_id" validate:"required"`
	ReservationDate string `json:"reservation_date" form:"reservation_date" validate:"required"`
}

// Date parses the submitted ISO date and rejects days in the past. today is
// injected so handlers and tests agree on the clock.
func (f *ReservationForm) Date(today time.Time) (time.Time, bool) {
	d, err := time.Parse(model.DateLayout, f.ReservationDate)
	if err != nil {
		return time.Time{}, false
	}
	floor, _ := time.Parse(model.DateLayout, today.Format(model.DateLayout))
	if d.Before(floor) {
		return time.Time{}, false
	}
	return d, true
}

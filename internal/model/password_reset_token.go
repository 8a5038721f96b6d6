package model

import (
	"time"

	"github.com/google/uuid"
)

// ResetTokenTTL is how long a password reset link stays usable.
const ResetTokenTTL = 24 * time.Hour

// PasswordResetToken mirrors the 'password_reset_token' table. The token
// value is an opaque UUID mailed to the user as part of a reset link.
type PasswordResetToken struct {
	ID        uint64    `json:"id"`
	Token     string    `json:"token"`
	UserID    uint64    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPasswordResetToken issues a fresh token for the given user, valid for
// ResetTokenTTL from now.
func NewPasswordResetToken(userID uint64) *PasswordResetToken {
	return &PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ResetTokenTTL),
	}
}

func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsValid reports whether the token can still complete a reset: it must be
// unused and unexpired. Marking a token used makes it permanently invalid.
func (t *PasswordResetToken) IsValid() bool {
	return !t.Used && !t.IsExpired()
}

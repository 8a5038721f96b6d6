package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/coworkhq/member-portal/internal/model"
)

// TokenRepo provides access to the password_reset_token table.
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// Insert stores a freshly issued token and fills in its id.
func (r *TokenRepo) Insert(ctx context.Context, t *model.PasswordResetToken) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO password_reset_token (token, user_id, expires_at, used) VALUES (?,?,?,?)",
		t.Token, t.UserID, t.ExpiresAt.UTC(), t.Used)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// FindUnused looks up an unused token by value. Expiry is checked by the
// caller through IsValid so the two failure modes stay distinguishable.
func (r *TokenRepo) FindUnused(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token, user_id, expires_at, used, created_at
		 FROM password_reset_token WHERE token=? AND used=0 LIMIT 1`,
		token).Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InvalidateForUser marks every outstanding token of the user as used.
// Issuing a new reset link calls this first, so only the newest link works.
func (r *TokenRepo) InvalidateForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE password_reset_token SET used=1 WHERE user_id=? AND used=0", userID)
	return err
}

// MarkUsed consumes a token after a successful reset.
func (r *TokenRepo) MarkUsed(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE password_reset_token SET used=1 WHERE id=?", id)
	return err
}

// PurgeExpired deletes tokens that expired before the cutoff. Housekeeping,
// called opportunistically from the forgot-password flow.
func (r *TokenRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM password_reset_token WHERE expires_at < ?", before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

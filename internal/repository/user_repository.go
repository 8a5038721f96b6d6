package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/coworkhq/member-portal/internal/model"
)

const userColumns = "id, username, email, password_hash, role, created_at, updated_at"

// UserRepo provides access to the app_user table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user with an already-hashed password and returns its id.
// MySQL duplicate-key errors (1062) are mapped to the sentinel for whichever
// unique key collided.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, role model.Role) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO app_user (username, email, password_hash, role) VALUES (?,?,?,?)",
		username, email, passwordHash, string(role))
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = model.RoleFromString(role)
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM app_user WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM app_user WHERE username=? LIMIT 1", strings.TrimSpace(username)))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM app_user WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))))
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM app_user WHERE username=?", strings.TrimSpace(username)).Scan(&n)
	return n > 0, err
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM app_user WHERE email=?",
		strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	return n > 0, err
}

// FindAll lists every member, newest first, for the user management page.
func (r *UserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM app_user ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Role = model.RoleFromString(role)
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdatePassword replaces the stored hash, used by the reset flow.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE app_user SET password_hash=? WHERE id=?", passwordHash, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

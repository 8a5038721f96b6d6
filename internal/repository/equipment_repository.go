package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/coworkhq/member-portal/internal/model"
)

const equipmentColumns = "id, name, purchase_price, description, category, created_at, updated_at"

// EquipmentRepo provides CRUD over the equipment table.
type EquipmentRepo struct{ db *sql.DB }

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

func scanEquipment(scan func(dest ...any) error) (*model.Equipment, error) {
	var e model.Equipment
	var price, category string
	if err := scan(&e.ID, &e.Name, &price, &e.Description, &category, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	e.PurchasePrice = p
	e.Category = model.CategoryFromString(category)
	return &e, nil
}

func (r *EquipmentRepo) GetByID(ctx context.Context, id uint64) (*model.Equipment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+equipmentColumns+" FROM equipment WHERE id=? LIMIT 1", id)
	e, err := scanEquipment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return e, err
}

// FindAll lists equipment ordered by name, matching the inventory page.
func (r *EquipmentRepo) FindAll(ctx context.Context) ([]model.Equipment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+equipmentColumns+" FROM equipment ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *EquipmentRepo) Create(ctx context.Context, e *model.Equipment) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO equipment (name, purchase_price, description, category) VALUES (?,?,?,?)",
		e.Name, e.PurchasePrice.StringFixed(2), e.Description, string(e.Category))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	e.ID = uint64(id)
	return e.ID, nil
}

func (r *EquipmentRepo) Update(ctx context.Context, e *model.Equipment) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE equipment SET name=?, purchase_price=?, description=?, category=? WHERE id=?",
		e.Name, e.PurchasePrice.StringFixed(2), e.Description, string(e.Category), e.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the row is gone or nothing changed; verify it still exists.
		if _, getErr := r.GetByID(ctx, e.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes the equipment row and reports whether anything was deleted.
// The reservation foreign key has no ON DELETE action, so MySQL rejects the
// delete (1451) while any reservation row references the equipment; that is
// mapped to ErrEquipmentInUse.
func (r *EquipmentRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM equipment WHERE id=?", id)
	if err != nil {
		if strings.Contains(err.Error(), "1451") {
			return false, ErrEquipmentInUse
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

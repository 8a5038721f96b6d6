package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coworkhq/member-portal/internal/model"
)

func newEquipmentMock(t *testing.T) (sqlmock.Sqlmock, *EquipmentRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return mock, NewEquipmentRepo(db)
}

func equipmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "purchase_price", "description", "category", "created_at", "updated_at"})
}

func TestEquipmentRepoGetByID(t *testing.T) {
	mock, repo := newEquipmentMock(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id=").
		WithArgs(uint64(3)).
		WillReturnRows(equipmentRows().AddRow(3, "Raspberry Pi 5", "89.90", "8GB model", "SINGLE_BOARD_COMPUTER", now, now))

	e, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Raspberry Pi 5", e.Name)
	assert.Equal(t, "89.90", e.PurchasePrice.StringFixed(2))
	assert.Equal(t, model.CategorySingleBoardComputer, e.Category)
}

func TestEquipmentRepoGetByIDNotFound(t *testing.T) {
	mock, repo := newEquipmentMock(t)

	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id=").
		WithArgs(uint64(99)).
		WillReturnRows(equipmentRows())

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEquipmentRepoCreate(t *testing.T) {
	mock, repo := newEquipmentMock(t)

	price, _ := decimal.NewFromString("12.5")
	e := &model.Equipment{Name: "Multimeter", PurchasePrice: price, Category: model.CategoryTools}

	// Prices are stored with two decimals.
	mock.ExpectExec("INSERT INTO equipment").
		WithArgs("Multimeter", "12.50", "", "TOOLS").
		WillReturnResult(sqlmock.NewResult(8, 1))

	id, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), id)
	assert.Equal(t, uint64(8), e.ID)
}

func TestEquipmentRepoUpdateMissingRow(t *testing.T) {
	mock, repo := newEquipmentMock(t)

	price, _ := decimal.NewFromString("12.50")
	e := &model.Equipment{ID: 99, Name: "Multimeter", PurchasePrice: price, Category: model.CategoryTools}

	mock.ExpectExec("UPDATE equipment SET").
		WithArgs("Multimeter", "12.50", "", "TOOLS", uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id=").
		WithArgs(uint64(99)).
		WillReturnRows(equipmentRows())

	assert.ErrorIs(t, repo.Update(context.Background(), e), ErrNotFound)
}

func TestEquipmentRepoDelete(t *testing.T) {
	mock, repo := newEquipmentMock(t)

	mock.ExpectExec("DELETE FROM equipment WHERE id=").
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.Delete(context.Background(), 8)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec("DELETE FROM equipment WHERE id=").
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.Delete(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEquipmentRepoDeleteBlockedByReservations(t *testing.T) {
	mock, repo := newEquipmentMock(t)

	mock.ExpectExec("DELETE FROM equipment WHERE id=").
		WithArgs(uint64(8)).
		WillReturnError(errors.New("Error 1451 (23000): Cannot delete or update a parent row: a foreign key constraint fails (`portal`.`equipment_reservation`, CONSTRAINT `fk_reservation_equipment`)"))

	_, err := repo.Delete(context.Background(), 8)
	assert.ErrorIs(t, err, ErrEquipmentInUse)
}

func TestEquipmentRepoFindAll(t *testing.T) {
	mock, repo := newEquipmentMock(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM equipment ORDER BY name").
		WillReturnRows(equipmentRows().
			AddRow(2, "Logic analyzer", "149.00", "", "TOOLS", now, now).
			AddRow(3, "Raspberry Pi 5", "89.90", "", "SINGLE_BOARD_COMPUTER", now, now))

	list, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Logic analyzer", list[0].Name)
}

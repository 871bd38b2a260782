package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockedProduct(t *testing.T, qty int64) (*inventory.Product, *inventory.StockMovement) {
	t.Helper()
	p, err := inventory.NewProduct(uuid.New(), uuid.New(), "hartie-a4", inventory.ProductDetails{
		Name:      "Hartie A4",
		SalePrice: decimal.NewFromInt(25),
		VATRate:   decimal.NewFromInt(19),
	})
	require.NoError(t, err)

	m, err := inventory.NewStockMovement(p.TenantID, p.CompanyID, p.ID, inventory.MovementReceipt,
		decimal.NewFromInt(qty), inventory.MovementDetails{ToLocation: "Depozit"})
	require.NoError(t, err)
	require.NoError(t, p.ApplyMovement(m))
	return p, m
}

func TestGormStockLedger_Record(t *testing.T) {
	t.Run("product and movement commit together", func(t *testing.T) {
		db, mock, _ := newMockGorm(t)
		ledger := NewGormStockLedger(db)
		p, m := newStockedProduct(t, 10)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, ledger.Record(context.Background(), p, m))
		assert.True(t, m.BalanceAfter.Equal(decimal.NewFromInt(10)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent booking loses the version race", func(t *testing.T) {
		db, mock, _ := newMockGorm(t)
		ledger := NewGormStockLedger(db)
		p, m := newStockedProduct(t, 5)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := ledger.Record(context.Background(), p, m)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", shared.ErrorCode(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("movement insert failure undoes the balance", func(t *testing.T) {
		db, mock, _ := newMockGorm(t)
		ledger := NewGormStockLedger(db)
		p, m := newStockedProduct(t, 5)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "stock_movements"`).WillReturnError(errors.New("constraint"))
		mock.ExpectRollback()

		assert.Error(t, ledger.Record(context.Background(), p, m))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockMovementRepository_TotalsByType(t *testing.T) {
	db, mock, _ := newMockGorm(t)
	repo := NewGormStockMovementRepository(db)

	mock.ExpectQuery(`SELECT type, COUNT\(\*\) AS count, .* FROM "stock_movements"`).
		WillReturnRows(sqlmock.NewRows([]string{"type", "count", "quantity"}).
			AddRow("receipt", 3, "30").
			AddRow("issue", 2, "12.5"))

	totals, err := repo.TotalsByType(context.Background(), uuid.New(), uuid.New(), shared.Filter{})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, inventory.MovementReceipt, totals[0].Type)
	assert.True(t, totals[1].Quantity.Equal(decimal.RequireFromString("12.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

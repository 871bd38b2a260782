package inventory

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Product, error)

	FindByCode(ctx context.Context, tenantID, companyID uuid.UUID, code string) (*Product, error)

	// FindAll supports Search (code, name) and the "status" and "category" filters.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]Product, error)

	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// FindLowStock returns active products at or below their minimum stock.
	FindLowStock(ctx context.Context, tenantID, companyID uuid.UUID, limit int) ([]Product, error)

	ExistsByCode(ctx context.Context, tenantID, companyID uuid.UUID, code string) (bool, error)

	Save(ctx context.Context, product *Product) error

	SaveWithLock(ctx context.Context, product *Product) error

	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}

// MovementTotals aggregates the movements of one type.
type MovementTotals struct {
	Type     MovementType
	Count    int64
	Quantity decimal.Decimal
}

// StockMovementRepository is append-only.
type StockMovementRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*StockMovement, error)

	// FindAll supports the "product_id", "type", "from_date" and "to_date" filters.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// TotalsByType accepts the same date filters as FindAll.
	TotalsByType(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]MovementTotals, error)

	Create(ctx context.Context, movement *StockMovement) error
}

// StockLedger books a movement and the product balance it produces atomically.
type StockLedger interface {
	Record(ctx context.Context, product *Product, movement *StockMovement) error
}

package persistence

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements the append-only movement ledger
type GormStockMovementRepository struct {
	db *gorm.DB
}

func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

func (r *GormStockMovementRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*inventory.StockMovement, error) {
	var model models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormStockMovementRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movementModels []models.StockMovementModel
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	query = paginate(r.applyFilter(query, filter), filter, StockMovementSortFields, "occurred_at")

	if err := query.Find(&movementModels).Error; err != nil {
		return nil, err
	}

	movements := make([]inventory.StockMovement, len(movementModels))
	for i := range movementModels {
		movements[i] = *movementModels[i].ToDomain()
	}
	return movements, nil
}

func (r *GormStockMovementRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type movementTotalsRow struct {
	Type     string
	Count    int64
	Quantity decimal.Decimal
}

func (r *GormStockMovementRepository) TotalsByType(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]inventory.MovementTotals, error) {
	var rows []movementTotalsRow
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := r.applyFilter(query, filter).
		Select("type, COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS quantity").
		Group("type").
		Order("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]inventory.MovementTotals, len(rows))
	for i, row := range rows {
		totals[i] = inventory.MovementTotals{
			Type:     inventory.MovementType(row.Type),
			Count:    row.Count,
			Quantity: row.Quantity,
		}
	}
	return totals, nil
}

func (r *GormStockMovementRepository) Create(ctx context.Context, m *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(m)).Error
}

func (r *GormStockMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "from_date":
			query = query.Where("occurred_at >= ?", value)
		case "to_date":
			query = query.Where("occurred_at <= ?", value)
		}
	}
	return query
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)

// GormStockLedger books a movement and the product balance in one transaction.
// The product update is version-checked, so concurrent bookings on the same
// product fail with OPTIMISTIC_LOCK_ERROR instead of losing a quantity.
type GormStockLedger struct {
	db *gorm.DB
}

func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

func (l *GormStockLedger) Record(ctx context.Context, product *inventory.Product, movement *inventory.StockMovement) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewGormProductRepository(tx).SaveWithLock(ctx, product); err != nil {
			return err
		}
		return NewGormStockMovementRepository(tx).Create(ctx, movement)
	})
}

var _ inventory.StockLedger = (*GormStockLedger)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/domain/receipt"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements receipt.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

func (r *GormReceiptRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*receipt.Receipt, error) {
	var model models.ReceiptModel
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

func (r *GormReceiptRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]receipt.Receipt, error) {
	var receiptModels []models.ReceiptModel
	query := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	query = paginate(r.applyFilter(query, filter), filter, ReceiptSortFields, "receipt_date")

	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, err
	}

	receipts := make([]receipt.Receipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = *receiptModels[i].ToDomain()
	}
	return receipts, nil
}

func (r *GormReceiptRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormReceiptRepository) Save(ctx context.Context, rc *receipt.Receipt) error {
	if err := r.db.WithContext(ctx).Save(models.ReceiptModelFromDomain(rc)).Error; err != nil {
		return err
	}
	rc.MarkStored()
	return nil
}

func (r *GormReceiptRepository) SaveWithLock(ctx context.Context, rc *receipt.Receipt) error {
	model := models.ReceiptModelFromDomain(rc)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", rc.ID, rc.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The receipt has been modified by another transaction")
	}
	rc.MarkStored()
	return nil
}

func (r *GormReceiptRepository) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Delete(&models.ReceiptModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormReceiptRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("vendor_name ILIKE ? OR receipt_number ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "from_date":
			query = query.Where("receipt_date >= ?", value)
		case "to_date":
			query = query.Where("receipt_date <= ?", value)
		}
	}
	return query
}

var _ receipt.ReceiptRepository = (*GormReceiptRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements company.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByIDForTenant finds a company by ID within a tenant
func (r *GormCompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCUI finds a company by its fiscal code; the RO prefix is ignored
func (r *GormCompanyRepository) FindByCUI(ctx context.Context, tenantID uuid.UUID, cui string) (*company.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("cui = ?", valueobject.NormalizeCUI(cui)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists the companies of a tenant
func (r *GormCompanyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]company.Company, error) {
	var companyModels []models.CompanyModel
	query := r.db.WithContext(ctx).Model(&models.CompanyModel{}).Scopes(tenant.TenantScope(tenantID))
	query = paginate(r.applyFilter(query, filter), filter, CompanySortFields, "name")

	if err := query.Find(&companyModels).Error; err != nil {
		return nil, err
	}

	companies := make([]company.Company, len(companyModels))
	for i, model := range companyModels {
		companies[i] = *model.ToDomain()
	}
	return companies, nil
}

// CountForTenant counts companies of a tenant matching the filter
func (r *GormCompanyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CompanyModel{}).Scopes(tenant.TenantScope(tenantID))
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindActiveTenantIDs lists tenants owning at least one active company
func (r *GormCompanyRepository) FindActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Where("status = ?", company.StatusActive).
		Distinct().
		Pluck("tenant_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ExistsByCUI checks whether the tenant already registered the fiscal code
func (r *GormCompanyRepository) ExistsByCUI(ctx context.Context, tenantID uuid.UUID, cui string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("cui = ?", valueobject.NormalizeCUI(cui)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	if err := r.db.WithContext(ctx).Save(models.CompanyModelFromDomain(c)).Error; err != nil {
		return err
	}
	c.MarkStored()
	return nil
}

// SaveWithLock saves a company with optimistic locking (version check)
func (r *GormCompanyRepository) SaveWithLock(ctx context.Context, c *company.Company) error {
	model := models.CompanyModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", c.ID, c.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The company record has been modified by another transaction")
	}
	c.MarkStored()
	return nil
}

// DeleteForTenant deletes a company within a tenant
func (r *GormCompanyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Delete(&models.CompanyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCompanyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("name ILIKE ? OR cui ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "city":
			query = query.Where("city = ?", value)
		}
	}
	return query
}

var _ company.CompanyRepository = (*GormCompanyRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements client.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client of a company
func (r *GormClientRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
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

// FindByCUI finds a client by fiscal code
func (r *GormClientRepository) FindByCUI(ctx context.Context, tenantID, companyID uuid.UUID, cui string) (*client.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("cui = ?", valueobject.NormalizeCUI(cui)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists clients of a company
func (r *GormClientRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]client.Client, error) {
	var clientModels []models.ClientModel
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	query = paginate(r.applyFilter(query, filter), filter, ClientSortFields, "name")

	if err := query.Find(&clientModels).Error; err != nil {
		return nil, err
	}

	clients := make([]client.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// Count counts clients matching the filter
func (r *GormClientRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	if err := r.db.WithContext(ctx).Save(models.ClientModelFromDomain(c)).Error; err != nil {
		return err
	}
	c.MarkStored()
	return nil
}

// SaveWithLock saves a client with optimistic locking (version check)
func (r *GormClientRepository) SaveWithLock(ctx context.Context, c *client.Client) error {
	model := models.ClientModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", c.ID, c.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The client record has been modified by another transaction")
	}
	c.MarkStored()
	return nil
}

// Delete deletes a client of a company
func (r *GormClientRepository) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Delete(&models.ClientModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormClientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("name ILIKE ? OR cui ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}

var _ client.ClientRepository = (*GormClientRepository)(nil)

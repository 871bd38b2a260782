package persistence

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/domain/onboarding"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProgressRepository stores one onboarding wizard state per user
type GormProgressRepository struct {
	db *gorm.DB
}

func NewGormProgressRepository(db *gorm.DB) *GormProgressRepository {
	return &GormProgressRepository{db: db}
}

func (r *GormProgressRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*onboarding.Progress, error) {
	var model models.OnboardingProgressModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormProgressRepository) Save(ctx context.Context, p *onboarding.Progress) error {
	if err := r.db.WithContext(ctx).Save(models.OnboardingProgressModelFromDomain(p)).Error; err != nil {
		return err
	}
	p.MarkStored()
	return nil
}

func (r *GormProgressRepository) SaveWithLock(ctx context.Context, p *onboarding.Progress) error {
	model := models.OnboardingProgressModelFromDomain(p)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", p.ID, p.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The onboarding progress has been modified by another request")
	}
	p.MarkStored()
	return nil
}

var _ onboarding.ProgressRepository = (*GormProgressRepository)(nil)

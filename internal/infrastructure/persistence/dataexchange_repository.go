package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExportJobRepository implements dataexchange.ExportJobRepository using GORM
type GormExportJobRepository struct {
	db *gorm.DB
}

func NewGormExportJobRepository(db *gorm.DB) *GormExportJobRepository {
	return &GormExportJobRepository{db: db}
}

func (r *GormExportJobRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*dataexchange.ExportJob, error) {
	var model models.ExportJobModel
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

func (r *GormExportJobRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]dataexchange.ExportJob, error) {
	var jobModels []models.ExportJobModel
	query := r.db.WithContext(ctx).Model(&models.ExportJobModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	query = paginate(applyJobFilter(query, filter), filter, JobSortFields, "created_at")

	if err := query.Find(&jobModels).Error; err != nil {
		return nil, err
	}

	jobs := make([]dataexchange.ExportJob, len(jobModels))
	for i := range jobModels {
		jobs[i] = *jobModels[i].ToDomain()
	}
	return jobs, nil
}

func (r *GormExportJobRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ExportJobModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := applyJobFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindPending is not tenant scoped: the export sweep runs for the whole installation.
func (r *GormExportJobRepository) FindPending(ctx context.Context, olderThan time.Time, limit int) ([]dataexchange.ExportJob, error) {
	var jobModels []models.ExportJobModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", dataexchange.JobStatusPending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobModels).Error; err != nil {
		return nil, err
	}
	jobs := make([]dataexchange.ExportJob, len(jobModels))
	for i := range jobModels {
		jobs[i] = *jobModels[i].ToDomain()
	}
	return jobs, nil
}

func (r *GormExportJobRepository) Save(ctx context.Context, job *dataexchange.ExportJob) error {
	if err := r.db.WithContext(ctx).Save(models.ExportJobModelFromDomain(job)).Error; err != nil {
		return err
	}
	job.MarkStored()
	return nil
}

func (r *GormExportJobRepository) SaveWithLock(ctx context.Context, job *dataexchange.ExportJob) error {
	model := models.ExportJobModelFromDomain(job)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", job.ID, job.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The export job has been modified by another transaction")
	}
	job.MarkStored()
	return nil
}

var _ dataexchange.ExportJobRepository = (*GormExportJobRepository)(nil)

// GormImportJobRepository implements dataexchange.ImportJobRepository using GORM
type GormImportJobRepository struct {
	db *gorm.DB
}

func NewGormImportJobRepository(db *gorm.DB) *GormImportJobRepository {
	return &GormImportJobRepository{db: db}
}

func (r *GormImportJobRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*dataexchange.ImportJob, error) {
	var model models.ImportJobModel
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

func (r *GormImportJobRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]dataexchange.ImportJob, error) {
	var jobModels []models.ImportJobModel
	query := r.db.WithContext(ctx).Model(&models.ImportJobModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	query = paginate(applyJobFilter(query, filter), filter, JobSortFields, "created_at")

	if err := query.Find(&jobModels).Error; err != nil {
		return nil, err
	}

	jobs := make([]dataexchange.ImportJob, len(jobModels))
	for i := range jobModels {
		jobs[i] = *jobModels[i].ToDomain()
	}
	return jobs, nil
}

func (r *GormImportJobRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ImportJobModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := applyJobFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormImportJobRepository) Save(ctx context.Context, job *dataexchange.ImportJob) error {
	return r.db.WithContext(ctx).Save(models.ImportJobModelFromDomain(job)).Error
}

var _ dataexchange.ImportJobRepository = (*GormImportJobRepository)(nil)

func applyJobFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "entity":
			query = query.Where("entity = ?", value)
		}
	}
	return query
}

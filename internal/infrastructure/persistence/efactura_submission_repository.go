package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/documentiulia/backend/internal/domain/efactura"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSubmissionRepository implements efactura.SubmissionRepository using GORM
type GormSubmissionRepository struct {
	db *gorm.DB
}

func NewGormSubmissionRepository(db *gorm.DB) *GormSubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

func (r *GormSubmissionRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*efactura.Submission, error) {
	var model models.EFacturaSubmissionModel
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

func (r *GormSubmissionRepository) FindLatestByInvoice(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*efactura.Submission, error) {
	var model models.EFacturaSubmissionModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormSubmissionRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]efactura.Submission, error) {
	var submissionModels []models.EFacturaSubmissionModel
	query := r.db.WithContext(ctx).Model(&models.EFacturaSubmissionModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	query = paginate(r.applyFilter(query, filter), filter, SubmissionSortFields, "created_at")

	if err := query.Find(&submissionModels).Error; err != nil {
		return nil, err
	}
	return toSubmissions(submissionModels), nil
}

func (r *GormSubmissionRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.EFacturaSubmissionModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSubmissionRepository) FindProcessing(ctx context.Context, tenantID, companyID uuid.UUID, limit int) ([]efactura.Submission, error) {
	var submissionModels []models.EFacturaSubmissionModel
	query := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("status = ?", efactura.StatusProcessing).
		Order("submitted_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&submissionModels).Error; err != nil {
		return nil, err
	}
	return toSubmissions(submissionModels), nil
}

func (r *GormSubmissionRepository) FindCompaniesWithProcessing(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.EFacturaSubmissionModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status = ?", efactura.StatusProcessing).
		Distinct().
		Pluck("company_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindDueForRetry returns submissions in error whose backoff elapsed and that have attempts left
func (r *GormSubmissionRepository) FindDueForRetry(ctx context.Context, tenantID uuid.UUID, now time.Time, maxAttempts, limit int) ([]efactura.Submission, error) {
	var submissionModels []models.EFacturaSubmissionModel
	query := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status = ? AND attempt_count < ? AND next_attempt_at IS NOT NULL AND next_attempt_at <= ?",
			efactura.StatusError, maxAttempts, now).
		Order("next_attempt_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&submissionModels).Error; err != nil {
		return nil, err
	}
	return toSubmissions(submissionModels), nil
}

type submissionStatsRow struct {
	Total       int64
	Pending     int64
	Processing  int64
	Accepted    int64
	Rejected    int64
	Errors      int64
	AvgAttempts float64
}

func (r *GormSubmissionRepository) Stats(ctx context.Context, tenantID, companyID uuid.UUID, since time.Time) (*efactura.Stats, error) {
	var row submissionStatsRow
	if err := r.db.WithContext(ctx).
		Model(&models.EFacturaSubmissionModel{}).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'processing') AS processing,
			COUNT(*) FILTER (WHERE status = 'accepted') AS accepted,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE status = 'error') AS errors,
			COALESCE(AVG(attempt_count), 0) AS avg_attempts`).
		Where("created_at >= ?", since).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &efactura.Stats{
		Total:       row.Total,
		Pending:     row.Pending,
		Processing:  row.Processing,
		Accepted:    row.Accepted,
		Rejected:    row.Rejected,
		Errors:      row.Errors,
		AvgAttempts: row.AvgAttempts,
	}, nil
}

func (r *GormSubmissionRepository) Save(ctx context.Context, s *efactura.Submission) error {
	if err := r.db.WithContext(ctx).Save(models.EFacturaSubmissionModelFromDomain(s)).Error; err != nil {
		return err
	}
	s.MarkStored()
	return nil
}

func (r *GormSubmissionRepository) SaveWithLock(ctx context.Context, s *efactura.Submission) error {
	model := models.EFacturaSubmissionModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", s.ID, s.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The submission has been modified by another transaction")
	}
	s.MarkStored()
	return nil
}

func (r *GormSubmissionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("invoice_number ILIKE ? OR upload_index ILIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if invoiceID, ok := filter.Filters["invoice_id"]; ok {
		query = query.Where("invoice_id = ?", invoiceID)
	}
	return query
}

func toSubmissions(submissionModels []models.EFacturaSubmissionModel) []efactura.Submission {
	submissions := make([]efactura.Submission, len(submissionModels))
	for i := range submissionModels {
		submissions[i] = *submissionModels[i].ToDomain()
	}
	return submissions
}

var _ efactura.SubmissionRepository = (*GormSubmissionRepository)(nil)

// Package dataexchange runs company data exports and CSV imports.
package dataexchange

import (
	"context"
	"time"

	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/scheduler"
	"github.com/documentiulia/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const downloadURLTTL = 15 * time.Minute

// ExportQueue hands a stored export job to the background executor.
type ExportQueue interface {
	EnqueueExport(ctx context.Context, tenantID, companyID, exportID uuid.UUID) error
}

type ExportService struct {
	jobs   dataexchange.ExportJobRepository
	queue  ExportQueue
	files  storage.ObjectStorage
	logger *zap.Logger
}

func NewExportService(jobs dataexchange.ExportJobRepository, queue ExportQueue, files storage.ObjectStorage, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{jobs: jobs, queue: queue, files: files, logger: logger.Named("export")}
}

// Create stores a pending export and enqueues it. When the queue is full the
// job stays pending and the export sweep picks it up later.
func (s *ExportService) Create(ctx context.Context, tenantID, companyID uuid.UUID, createdBy *uuid.UUID, req CreateExportRequest) (*ExportJobResponse, error) {
	entity := dataexchange.Entity(req.Entity)
	job, err := dataexchange.NewExportJob(tenantID, companyID, entity, dataexchange.Format(req.Format), req.Filters)
	if err != nil {
		return nil, err
	}
	if _, err := buildFilter(entity, job.Filters); err != nil {
		return nil, err
	}
	job.CreatedBy = createdBy
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}
	if err := s.queue.EnqueueExport(ctx, tenantID, companyID, job.ID); err != nil {
		s.logger.Warn("export not enqueued, left for the sweep",
			zap.String("export_id", job.ID.String()),
			zap.Error(err),
		)
	}
	response := ToExportJobResponse(job)
	return &response, nil
}

func (s *ExportService) GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*ExportJobResponse, error) {
	job, err := s.jobs.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToExportJobResponse(job)
	return &response, nil
}

func (s *ExportService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter ExportListFilter) ([]ExportJobResponse, int64, error) {
	domainFilter := jobFilter(filter.Page, filter.PageSize, filter.Status, filter.Entity)
	jobs, err := s.jobs.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.jobs.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ExportJobResponse, len(jobs))
	for i := range jobs {
		out[i] = ToExportJobResponse(&jobs[i])
	}
	return out, total, nil
}

// Download presigns the finished file.
func (s *ExportService) Download(ctx context.Context, tenantID, companyID, id uuid.UUID) (*DownloadResponse, error) {
	job, err := s.jobs.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	if !job.IsDownloadable() {
		return nil, shared.NewDomainError("EXPORT_NOT_READY", "The export has not completed")
	}
	url, expires, err := s.files.GenerateDownloadURL(ctx, job.ObjectKey, downloadURLTTL)
	if err != nil {
		return nil, err
	}
	return &DownloadResponse{URL: url, FileName: job.FileName(), ExpiresAt: expires}, nil
}

func (s *ExportService) Cancel(ctx context.Context, tenantID, companyID, id uuid.UUID) (*ExportJobResponse, error) {
	job, err := s.jobs.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := job.Cancel(); err != nil {
		return nil, err
	}
	if err := s.jobs.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}
	response := ToExportJobResponse(job)
	return &response, nil
}

// PendingExports feeds the scheduler's export sweep.
func (s *ExportService) PendingExports(ctx context.Context, olderThan time.Time, limit int) ([]scheduler.PendingExport, error) {
	jobs, err := s.jobs.FindPending(ctx, olderThan, limit)
	if err != nil {
		return nil, err
	}
	out := make([]scheduler.PendingExport, len(jobs))
	for i := range jobs {
		out[i] = scheduler.PendingExport{TenantID: jobs[i].TenantID, CompanyID: jobs[i].CompanyID, ExportID: jobs[i].ID}
	}
	return out, nil
}

func jobFilter(page, pageSize int, status, entity string) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if status != "" {
		f.Filters["status"] = status
	}
	if entity != "" {
		f.Filters["entity"] = entity
	}
	return f
}

package dataexchange

import (
	"context"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type ExportJobRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*ExportJob, error)
	// FindAll supports the "status" and "entity" filters.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]ExportJob, error)
	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)
	// FindPending lists pending jobs of every tenant created before olderThan, oldest first.
	FindPending(ctx context.Context, olderThan time.Time, limit int) ([]ExportJob, error)
	Save(ctx context.Context, job *ExportJob) error
	SaveWithLock(ctx context.Context, job *ExportJob) error
}

type ImportJobRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*ImportJob, error)
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]ImportJob, error)
	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, job *ImportJob) error
}

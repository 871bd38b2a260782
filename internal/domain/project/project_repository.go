package project

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectRepository persists projects of a company.
type ProjectRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Project, error)

	// FindAll supports Search (name, description) and the filters
	// status, health_status, methodology, priority and client_id.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]Project, error)

	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)

	Save(ctx context.Context, project *Project) error

	SaveWithLock(ctx context.Context, project *Project) error
}

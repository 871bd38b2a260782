package company

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyRepository persists companies. All lookups are scoped to a tenant.
type CompanyRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Company, error)

	FindByCUI(ctx context.Context, tenantID uuid.UUID, cui string) (*Company, error)

	// FindAllForTenant supports Search (name, cui) and the "status" filter.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Company, error)

	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindActiveTenantIDs lists tenants that own at least one active company.
	// Background jobs iterate over it.
	FindActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)

	ExistsByCUI(ctx context.Context, tenantID uuid.UUID, cui string) (bool, error)

	Save(ctx context.Context, company *Company) error

	// SaveWithLock fails with OPTIMISTIC_LOCK_ERROR when the stored version moved on.
	SaveWithLock(ctx context.Context, company *Company) error

	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

package hr

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type EmployeeRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Employee, error)
	// FindAll supports Search (names, email) and the "status" and "department" filters.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]Employee, error)
	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)
	FindActive(ctx context.Context, tenantID, companyID uuid.UUID) ([]Employee, error)
	ExistsByCNP(ctx context.Context, tenantID, companyID uuid.UUID, cnp string) (bool, error)
	Save(ctx context.Context, employee *Employee) error
	SaveWithLock(ctx context.Context, employee *Employee) error
	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}

type PayrollRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PayrollRun, error)
	FindByPeriod(ctx context.Context, tenantID, companyID uuid.UUID, period string) (*PayrollRun, error)
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]PayrollRun, error)
	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, run *PayrollRun) error
	SaveWithLock(ctx context.Context, run *PayrollRun) error
}

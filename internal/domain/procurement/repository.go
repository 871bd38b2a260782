package procurement

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PurchaseOrder, error)

	// FindAll supports Search (number, supplier) and the "status", "from_date" and "to_date" filters.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// NextSequence returns the next free PO number sequence for the company.
	NextSequence(ctx context.Context, tenantID, companyID uuid.UUID) (int, error)

	Save(ctx context.Context, po *PurchaseOrder) error

	SaveWithLock(ctx context.Context, po *PurchaseOrder) error

	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}

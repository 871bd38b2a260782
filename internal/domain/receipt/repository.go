package receipt

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type ReceiptRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Receipt, error)
	// FindAll supports Search (vendor, number) and the "status", "category", "from_date" and "to_date" filters.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]Receipt, error)
	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, receipt *Receipt) error
	SaveWithLock(ctx context.Context, receipt *Receipt) error
	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}

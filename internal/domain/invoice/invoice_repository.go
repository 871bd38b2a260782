package invoice

import (
	"context"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusTotals aggregates invoices of one status.
type StatusTotals struct {
	Status      Status
	Count       int64
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	GrossAmount decimal.Decimal
}

// InvoiceRepository persists invoices together with their lines.
type InvoiceRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Invoice, error)

	// FindByIDs returns the invoices found; missing ids are simply absent.
	FindByIDs(ctx context.Context, tenantID, companyID uuid.UUID, ids []uuid.UUID) ([]Invoice, error)

	// FindAll supports Search (number, partner name) and the filters status, type,
	// client_id, from_date and to_date.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// CountForCompany counts all invoices of a company regardless of status.
	CountForCompany(ctx context.Context, tenantID, companyID uuid.UUID) (int64, error)

	ExistsByNumber(ctx context.Context, tenantID, companyID uuid.UUID, number string) (bool, error)

	// NextSequence returns the next free sequence number of a series.
	NextSequence(ctx context.Context, tenantID, companyID uuid.UUID, series string) (int, error)

	// FindOverdue returns open invoices whose due date is before asOf, oldest first.
	FindOverdue(ctx context.Context, tenantID, companyID uuid.UUID, asOf time.Time, limit int) ([]Invoice, error)

	// SummarizeByStatus aggregates invoices issued in [from, to).
	SummarizeByStatus(ctx context.Context, tenantID, companyID uuid.UUID, from, to time.Time) ([]StatusTotals, error)

	Save(ctx context.Context, invoice *Invoice) error

	SaveWithLock(ctx context.Context, invoice *Invoice) error

	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}

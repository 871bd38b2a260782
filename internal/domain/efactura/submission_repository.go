package efactura

import (
	"context"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Stats aggregates submissions created since a point in time.
type Stats struct {
	Total       int64
	Pending     int64
	Processing  int64
	Accepted    int64
	Rejected    int64
	Errors      int64
	AvgAttempts float64
}

type SubmissionRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Submission, error)

	// FindLatestByInvoice returns the most recent submission of an invoice.
	FindLatestByInvoice(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*Submission, error)

	// FindAll supports Search (invoice number, upload index) and the "status" filter.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]Submission, error)

	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// FindProcessing returns processing submissions newest first.
	FindProcessing(ctx context.Context, tenantID, companyID uuid.UUID, limit int) ([]Submission, error)

	// FindCompaniesWithProcessing lists companies of a tenant that have submissions awaiting a verdict.
	FindCompaniesWithProcessing(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)

	// FindDueForRetry returns failed submissions of a tenant whose next attempt is due.
	FindDueForRetry(ctx context.Context, tenantID uuid.UUID, now time.Time, maxAttempts, limit int) ([]Submission, error)

	Stats(ctx context.Context, tenantID, companyID uuid.UUID, since time.Time) (*Stats, error)

	Save(ctx context.Context, submission *Submission) error

	SaveWithLock(ctx context.Context, submission *Submission) error
}

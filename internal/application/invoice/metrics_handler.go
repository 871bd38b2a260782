package invoice

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransitionRecorder counts invoice status changes. *telemetry.BusinessMetrics implements it.
type TransitionRecorder interface {
	RecordInvoiceTransition(ctx context.Context, tenantID uuid.UUID, status, baseCurrency string, baseGross decimal.Decimal)
}

// BusinessMetricsHandler feeds invoice status events into the business metrics.
type BusinessMetricsHandler struct {
	recorder TransitionRecorder
}

func NewBusinessMetricsHandler(recorder TransitionRecorder) *BusinessMetricsHandler {
	return &BusinessMetricsHandler{recorder: recorder}
}

func (h *BusinessMetricsHandler) EventTypes() []string {
	return []string{invoice.EventTypeInvoiceStatusChanged}
}

func (h *BusinessMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if e, ok := event.(*invoice.InvoiceStatusChangedEvent); ok {
		h.recorder.RecordInvoiceTransition(ctx, e.TenantID(), string(e.NewStatus), e.BaseCurrency, e.BaseGrossAmount)
	}
	return nil
}

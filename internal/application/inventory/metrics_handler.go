package inventory

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementRecorder counts stock movements. *telemetry.BusinessMetrics implements it.
type MovementRecorder interface {
	RecordStockMovement(ctx context.Context, tenantID uuid.UUID, movementType string, delta decimal.Decimal)
}

type MovementMetricsHandler struct {
	recorder MovementRecorder
}

func NewMovementMetricsHandler(recorder MovementRecorder) *MovementMetricsHandler {
	return &MovementMetricsHandler{recorder: recorder}
}

func (h *MovementMetricsHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockChanged}
}

func (h *MovementMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if e, ok := event.(*inventory.StockChangedEvent); ok {
		h.recorder.RecordStockMovement(ctx, e.TenantID(), string(e.MovementType), e.Delta)
	}
	return nil
}

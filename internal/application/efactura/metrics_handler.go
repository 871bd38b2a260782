package efactura

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/efactura"
	"github.com/documentiulia/backend/internal/domain/shared"
)

// StatusObserver counts submission status transitions. *telemetry.Metrics implements it.
type StatusObserver interface {
	ObserveSubmissionStatus(status string)
}

// StatusMetricsHandler feeds submission events into the status counter.
type StatusMetricsHandler struct {
	observer StatusObserver
}

func NewStatusMetricsHandler(observer StatusObserver) *StatusMetricsHandler {
	return &StatusMetricsHandler{observer: observer}
}

func (h *StatusMetricsHandler) EventTypes() []string {
	return []string{efactura.EventTypeSubmissionCreated, efactura.EventTypeSubmissionStatusChanged}
}

func (h *StatusMetricsHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *efactura.SubmissionCreatedEvent:
		h.observer.ObserveSubmissionStatus(string(efactura.StatusPending))
	case *efactura.SubmissionStatusChangedEvent:
		h.observer.ObserveSubmissionStatus(string(e.NewStatus))
	}
	return nil
}

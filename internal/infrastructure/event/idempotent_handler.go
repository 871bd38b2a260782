package event

import (
	"context"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultIdempotencyTTL bounds how long a delivered event id is remembered.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotentHandler runs the wrapped handler at most once per event id.
// When the store is unreachable the event is processed anyway: a duplicate
// side effect is preferred over a lost one.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger
}

func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{handler: handler, store: store, ttl: ttl, logger: logger}
}

func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	key := "event:" + evt.EventID().String()

	isNew, err := h.store.MarkProcessed(ctx, key, h.ttl)
	switch {
	case err != nil:
		h.logger.Warn("idempotency check failed, processing anyway",
			zap.String("event_id", evt.EventID().String()),
			zap.String("event_type", evt.EventType()),
			zap.Error(err))
	case !isNew:
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", evt.EventID().String()),
			zap.String("event_type", evt.EventType()))
		return nil
	}

	if err := h.handler.Handle(ctx, evt); err != nil {
		// Free the key so a redelivery can try again.
		if relErr := h.store.Release(ctx, key); relErr != nil {
			h.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
		}
		return err
	}
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)

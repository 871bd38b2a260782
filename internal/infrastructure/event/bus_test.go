package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New(), uuid.New()),
		Number:          "DI-000001",
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, evt)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	created := newTestHandler("InvoiceCreated")
	changed := newTestHandler("InvoiceStatusChanged")
	all := newTestHandler()
	bus.Subscribe(created)
	bus.Subscribe(changed)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("InvoiceCreated"),
		newTestEvent("InvoiceStatusChanged"),
		newTestEvent("InvoiceStatusChanged"),
	))

	assert.Equal(t, 1, created.count())
	assert.Equal(t, 2, changed.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("InvoiceCreated")
	bus.Subscribe(h, "InvoiceDeleted")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated"), newTestEvent("InvoiceDeleted")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_FailuresDoNotPropagate(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newTestHandler("InvoiceCreated")
	failing.err = errors.New("downstream unavailable")
	panicking := newTestHandler("InvoiceCreated")
	panicking.panics = true
	healthy := newTestHandler("InvoiceCreated")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("InvoiceCreated"))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, int64(2), bus.Failures())
}

func TestInMemoryEventBus_UnsubscribeAndStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()
	h := newTestHandler("InvoiceCreated")
	bus.Subscribe(h)

	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(ctx, newTestEvent("InvoiceCreated")))
	assert.Zero(t, h.count())

	bus.Subscribe(h)
	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("InvoiceCreated")))
	assert.Zero(t, h.count(), "stopped bus drops events")

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("InvoiceCreated")))
	assert.Equal(t, 1, h.count())
}

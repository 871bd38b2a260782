package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
)

// EventRecorder captures domain events. It is both a publisher, to hand to
// services through SetEventPublisher, and a bus handler.
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	events     []shared.DomainEvent
	err        error
}

// NewEventRecorder records every event, or only eventTypes when given.
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

func (r *EventRecorder) EventTypes() []string {
	return r.eventTypes
}

func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *EventRecorder) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		_ = r.Handle(ctx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types lists the recorded event types in order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

func (r *EventRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// SetError makes Handle and Publish fail after recording.
func (r *EventRecorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.err = nil
}

// WaitForEvents waits until at least n events were recorded. The event bus
// dispatches asynchronously.
func WaitForEvents(t *testing.T, r *EventRecorder, n int, timeout time.Duration) bool {
	t.Helper()
	return Eventually(func() bool { return r.Count() >= n }, timeout, 10*time.Millisecond)
}

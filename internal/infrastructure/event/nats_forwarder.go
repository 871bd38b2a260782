package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Envelope is the JSON message published for every forwarded domain event.
type Envelope struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	TenantID      string          `json:"tenant_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Publisher is the subset of *nats.Conn the forwarder needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ConnectNATS dials with unlimited reconnects so that a broker restart does not
// require restarting the service.
func ConnectNATS(cfg config.NATSConfig, serviceName string, logger *zap.Logger) (*nats.Conn, error) {
	log := logger.Named("nats")
	nc, err := nats.Connect(cfg.URL,
		nats.Name(serviceName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("reconnected", zap.String("url", c.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("async error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.URL, err)
	}
	return nc, nil
}

// NATSForwarder is a wildcard handler that republishes every event on
// <prefix>.<aggregate_type>.<event_type>.
type NATSForwarder struct {
	pub    Publisher
	prefix string
	logger *zap.Logger
}

func NewNATSForwarder(pub Publisher, subjectPrefix string, logger *zap.Logger) *NATSForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSForwarder{
		pub:    pub,
		prefix: strings.TrimSuffix(subjectPrefix, "."),
		logger: logger,
	}
}

func (f *NATSForwarder) EventTypes() []string {
	return nil
}

func (f *NATSForwarder) Subject(evt shared.DomainEvent) string {
	return f.prefix + "." + subjectToken(evt.AggregateType()) + "." + subjectToken(evt.EventType())
}

func (f *NATSForwarder) Handle(_ context.Context, evt shared.DomainEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", evt.EventType(), err)
	}
	data, err := json.Marshal(Envelope{
		ID:            evt.EventID().String(),
		Type:          evt.EventType(),
		AggregateType: evt.AggregateType(),
		AggregateID:   evt.AggregateID().String(),
		TenantID:      evt.TenantID().String(),
		OccurredAt:    evt.OccurredAt().UTC(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	subject := f.Subject(evt)
	if err := f.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	f.logger.Debug("event forwarded", zap.String("subject", subject), zap.String("event_id", evt.EventID().String()))
	return nil
}

// subjectToken lowercases and strips the characters NATS treats as separators or wildcards.
func subjectToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ':
			return '_'
		}
		return r
	}, s)
}

var (
	_ shared.EventHandler = (*NATSForwarder)(nil)
	_ Publisher           = (*nats.Conn)(nil)
)

package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
	err    error
}

func (n *recordingNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func lowStockEvent(t *testing.T, onHand int64) *inventory.LowStockEvent {
	t.Helper()
	p, err := inventory.NewProduct(uuid.New(), uuid.New(), "TONER-HP", inventory.ProductDetails{
		Name:     "Toner HP 85A",
		VATRate:  decimal.NewFromInt(21),
		MinStock: decimal.NewFromInt(4),
	})
	require.NoError(t, err)
	p.QuantityOnHand = decimal.NewFromInt(onHand)
	return inventory.NewLowStockEvent(p)
}

func TestLowStockHandler_Handle(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewLowStockHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

	require.NoError(t, handler.Handle(context.Background(), lowStockEvent(t, 3)))
	require.NoError(t, handler.Handle(context.Background(), lowStockEvent(t, 0)))

	require.Len(t, notifier.alerts, 2)
	assert.Equal(t, "low_stock", notifier.alerts[0].AlertType)
	assert.Equal(t, "TONER-HP", notifier.alerts[0].Code)
	assert.Equal(t, "3", notifier.alerts[0].QuantityOnHand)
	assert.Equal(t, "4", notifier.alerts[0].MinStock)
	assert.Equal(t, "out_of_stock", notifier.alerts[1].AlertType)
}

func TestLowStockHandler_NotifierFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	handler := NewLowStockHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

	assert.NoError(t, handler.Handle(context.Background(), lowStockEvent(t, 1)))
	assert.Len(t, notifier.alerts, 1)
}

func TestLowStockHandler_WrongEvent(t *testing.T) {
	handler := NewLowStockHandler(zap.NewNop())
	p, err := inventory.NewProduct(uuid.New(), uuid.New(), "X1", inventory.ProductDetails{Name: "X", VATRate: decimal.NewFromInt(21)})
	require.NoError(t, err)

	assert.Error(t, handler.Handle(context.Background(), inventory.NewProductCreatedEvent(p)))
	assert.Equal(t, []string{inventory.EventTypeLowStock}, handler.EventTypes())
}

func TestLoggingStockAlertNotifier_SendAlert(t *testing.T) {
	notifier := NewLoggingStockAlertNotifier(zaptest.NewLogger(t))
	assert.NoError(t, notifier.SendAlert(context.Background(), StockAlert{Code: "X1", AlertType: "low_stock"}))
}

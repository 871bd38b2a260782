package inventory

import (
	"context"
	"fmt"

	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/documentiulia/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlert describes a product that reached its minimum stock.
type StockAlert struct {
	TenantID       string `json:"tenant_id"`
	CompanyID      string `json:"company_id"`
	ProductID      string `json:"product_id"`
	Code           string `json:"code"`
	QuantityOnHand string `json:"quantity_on_hand"`
	MinStock       string `json:"min_stock"`
	AlertType      string `json:"alert_type"` // low_stock or out_of_stock
}

// StockAlertNotifier delivers stock alerts to a channel (log, mail, in-app).
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// LowStockHandler turns LowStock events into alerts.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockHandler{logger: logger.Named("low_stock")}
}

func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStock}
}

func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	low, ok := event.(*inventory.LowStockEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeLowStock),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s", inventory.EventTypeLowStock, event.EventType())
	}

	alertType := "low_stock"
	if low.QuantityOnHand.IsZero() {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		TenantID:       event.TenantID().String(),
		CompanyID:      low.CompanyID.String(),
		ProductID:      event.AggregateID().String(),
		Code:           low.Code,
		QuantityOnHand: low.QuantityOnHand.String(),
		MinStock:       low.MinStock.String(),
		AlertType:      alertType,
	}

	if h.notifier == nil {
		return nil
	}
	// Delivery failures are logged only; the movement is already booked.
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		h.logger.Error("failed to send stock alert",
			zap.String("product_id", alert.ProductID),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("stock alert",
		zap.String("type", alert.AlertType),
		zap.String("tenant_id", alert.TenantID),
		zap.String("company_id", alert.CompanyID),
		zap.String("code", alert.Code),
		zap.String("quantity_on_hand", alert.QuantityOnHand),
		zap.String("min_stock", alert.MinStock),
	)
	return nil
}

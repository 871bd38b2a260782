package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/documentiulia/backend"

var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

var (
	AttrTenantID     = attribute.Key("tenant.id")
	AttrInvoiceState = attribute.Key("invoice.status")
	AttrCurrency     = attribute.Key("currency")
	AttrMovementType = attribute.Key("stock.movement_type")
	AttrUploadResult = attribute.Key("efactura.result")
)

// Upload results recorded by RecordEFacturaUpload.
const (
	UploadAccepted   = "accepted"
	UploadFailed     = "failed"
	UploadUnrecorded = "unrecorded"
)

// BusinessMetrics exports accounting activity through the OTEL meter. With telemetry
// disabled the global meter is a no-op and every call is free.
type BusinessMetrics struct {
	invoiceTransitions metric.Int64Counter
	invoicedAmount     metric.Int64Counter
	stockMovements     metric.Int64Counter
	stockQuantity      metric.Float64Counter
	uploads            metric.Int64Counter
}

// NewGlobalBusinessMetrics builds the instruments on the meter installed by Setup.
func NewGlobalBusinessMetrics() (*BusinessMetrics, error) {
	return NewBusinessMetrics(otel.GetMeterProvider().Meter(meterName))
}

func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	var err error

	if bm.invoiceTransitions, err = meter.Int64Counter("documentiulia.invoice.transitions",
		metric.WithDescription("Invoice status transitions by target status"),
		metric.WithUnit("{invoices}")); err != nil {
		return nil, fmt.Errorf("failed to create invoice transition counter: %w", err)
	}
	if bm.invoicedAmount, err = meter.Int64Counter("documentiulia.invoice.approved_amount",
		metric.WithDescription("Gross value of approved invoices in base currency minor units"),
		metric.WithUnit("{bani}")); err != nil {
		return nil, fmt.Errorf("failed to create invoiced amount counter: %w", err)
	}
	if bm.stockMovements, err = meter.Int64Counter("documentiulia.stock.movements",
		metric.WithDescription("Stock movements by type"),
		metric.WithUnit("{movements}")); err != nil {
		return nil, fmt.Errorf("failed to create stock movement counter: %w", err)
	}
	if bm.stockQuantity, err = meter.Float64Counter("documentiulia.stock.quantity_moved",
		metric.WithDescription("Absolute quantity moved by movement type"),
		metric.WithUnit("{units}")); err != nil {
		return nil, fmt.Errorf("failed to create stock quantity counter: %w", err)
	}
	if bm.uploads, err = meter.Int64Counter("documentiulia.efactura.uploads",
		metric.WithDescription("e-Factura uploads by outcome"),
		metric.WithUnit("{uploads}")); err != nil {
		return nil, fmt.Errorf("failed to create upload counter: %w", err)
	}
	return bm, nil
}

// RecordInvoiceTransition counts one status change; approvals also add their base gross value.
func (bm *BusinessMetrics) RecordInvoiceTransition(ctx context.Context, tenantID uuid.UUID, status, baseCurrency string, baseGross decimal.Decimal) {
	if bm == nil {
		return
	}
	tenant := AttrTenantID.String(tenantID.String())
	bm.invoiceTransitions.Add(ctx, 1, metric.WithAttributes(tenant, AttrInvoiceState.String(status)))
	if status == "approved" {
		bani := baseGross.Shift(2).Round(0).IntPart()
		bm.invoicedAmount.Add(ctx, bani, metric.WithAttributes(tenant, AttrCurrency.String(baseCurrency)))
	}
}

func (bm *BusinessMetrics) RecordStockMovement(ctx context.Context, tenantID uuid.UUID, movementType string, delta decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := metric.WithAttributes(AttrTenantID.String(tenantID.String()), AttrMovementType.String(movementType))
	bm.stockMovements.Add(ctx, 1, attrs)
	bm.stockQuantity.Add(ctx, delta.Abs().InexactFloat64(), attrs)
}

func (bm *BusinessMetrics) RecordEFacturaUpload(ctx context.Context, tenantID uuid.UUID, result string) {
	if bm == nil {
		return
	}
	bm.uploads.Add(ctx, 1, metric.WithAttributes(AttrTenantID.String(tenantID.String()), AttrUploadResult.String(result)))
}

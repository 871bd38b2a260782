package receipt

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeReceipt = "Receipt"

const (
	EventTypeReceiptCreated  = "ReceiptCreated"
	EventTypeReceiptVerified = "ReceiptVerified"
	EventTypeReceiptRejected = "ReceiptRejected"
)

// ReceiptEvent is shared by every receipt lifecycle event.
type ReceiptEvent struct {
	shared.BaseDomainEvent
	CompanyID   uuid.UUID       `json:"company_id"`
	VendorName  string          `json:"vendor_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
}

func NewReceiptEvent(eventType string, r *Receipt) *ReceiptEvent {
	return &ReceiptEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReceipt, r.ID, r.TenantID),
		CompanyID:       r.CompanyID,
		VendorName:      r.VendorName,
		TotalAmount:     r.TotalAmount,
		Status:          r.Status,
	}
}

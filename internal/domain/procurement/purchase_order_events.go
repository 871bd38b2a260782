package procurement

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypePurchaseOrder = "PurchaseOrder"

const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
	EventTypePurchaseOrderReceived      = "PurchaseOrderReceived"
)

type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID    uuid.UUID `json:"company_id"`
	Number       string    `json:"number"`
	SupplierName string    `json:"supplier_name"`
}

func NewPurchaseOrderCreatedEvent(po *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, po.ID, po.TenantID),
		CompanyID:       po.CompanyID,
		Number:          po.Number,
		SupplierName:    po.Supplier.Name,
	}
}

type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	CompanyID  uuid.UUID `json:"company_id"`
	Number     string    `json:"number"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
}

func NewPurchaseOrderStatusChangedEvent(po *PurchaseOrder, from Status) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, po.ID, po.TenantID),
		CompanyID:       po.CompanyID,
		Number:          po.Number,
		FromStatus:      from,
		ToStatus:        po.Status,
	}
}

type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID       `json:"company_id"`
	Number    string          `json:"number"`
	Lines     int             `json:"lines"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func NewPurchaseOrderReceivedEvent(po *PurchaseOrder, received []ReceivedLine) *PurchaseOrderReceivedEvent {
	total := decimal.Zero
	for _, r := range received {
		total = total.Add(r.Quantity)
	}
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, po.ID, po.TenantID),
		CompanyID:       po.CompanyID,
		Number:          po.Number,
		Lines:           len(received),
		Quantity:        total,
	}
}

package invoice

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeInvoice = "Invoice"

const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceUpdated       = "InvoiceUpdated"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
	EventTypeInvoiceDeleted       = "InvoiceDeleted"
)

type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
	Type      Type      `json:"type"`
}

func NewInvoiceCreatedEvent(i *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, i.ID, i.TenantID),
		CompanyID:       i.CompanyID,
		InvoiceID:       i.ID,
		Number:          i.Number,
		Type:            i.Type,
	}
}

type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	CompanyID   uuid.UUID       `json:"company_id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
}

func NewInvoiceUpdatedEvent(i *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, AggregateTypeInvoice, i.ID, i.TenantID),
		CompanyID:       i.CompanyID,
		InvoiceID:       i.ID,
		GrossAmount:     i.GrossAmount,
	}
}

type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	CompanyID      uuid.UUID `json:"company_id"`
	InvoiceID      uuid.UUID `json:"invoice_id"`
	Number         string    `json:"number"`
	PreviousStatus Status    `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`

	// Base currency value at the time of the transition.
	BaseCurrency    string          `json:"base_currency"`
	BaseGrossAmount decimal.Decimal `json:"base_gross_amount"`
}

func NewInvoiceStatusChangedEvent(i *Invoice, previous, next Status) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, i.ID, i.TenantID),
		CompanyID:       i.CompanyID,
		InvoiceID:       i.ID,
		Number:          i.Number,
		PreviousStatus:  previous,
		NewStatus:       next,
		BaseCurrency:    string(i.BaseCurrency),
		BaseGrossAmount: i.BaseGrossAmount,
	}
}

type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
}

func NewInvoiceDeletedEvent(i *Invoice) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, AggregateTypeInvoice, i.ID, i.TenantID),
		CompanyID:       i.CompanyID,
		InvoiceID:       i.ID,
		Number:          i.Number,
	}
}

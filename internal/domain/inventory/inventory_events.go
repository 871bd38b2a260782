package inventory

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeProduct = "Product"

const (
	EventTypeProductCreated = "ProductCreated"
	EventTypeStockChanged   = "StockChanged"
	EventTypeLowStock       = "LowStock"
)

type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
}

func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID, p.TenantID),
		CompanyID:       p.CompanyID,
		Code:            p.Code,
		Name:            p.Name,
	}
}

type StockChangedEvent struct {
	shared.BaseDomainEvent
	CompanyID    uuid.UUID       `json:"company_id"`
	MovementID   uuid.UUID       `json:"movement_id"`
	MovementType MovementType    `json:"movement_type"`
	Delta        decimal.Decimal `json:"delta"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

func NewStockChangedEvent(p *Product, m *StockMovement) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeProduct, p.ID, p.TenantID),
		CompanyID:       p.CompanyID,
		MovementID:      m.ID,
		MovementType:    m.Type,
		Delta:           m.SignedQuantity(),
		BalanceAfter:    m.BalanceAfter,
	}
}

type LowStockEvent struct {
	shared.BaseDomainEvent
	CompanyID      uuid.UUID       `json:"company_id"`
	Code           string          `json:"code"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	MinStock       decimal.Decimal `json:"min_stock"`
}

func NewLowStockEvent(p *Product) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, AggregateTypeProduct, p.ID, p.TenantID),
		CompanyID:       p.CompanyID,
		Code:            p.Code,
		QuantityOnHand:  p.QuantityOnHand,
		MinStock:        p.MinStock,
	}
}

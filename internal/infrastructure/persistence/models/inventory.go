package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductModel struct {
	CompanyAggregateModel
	Code           string                  `gorm:"type:varchar(50);not null"`
	Name           string                  `gorm:"type:varchar(200);not null"`
	Unit           string                  `gorm:"type:varchar(20);not null;default:'buc'"`
	Category       string                  `gorm:"type:varchar(100);index"`
	PurchasePrice  decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	SalePrice      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	VATRate        decimal.Decimal         `gorm:"column:vat_rate;type:decimal(5,2);not null"`
	MinStock       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	QuantityOnHand decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status         inventory.ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Code:                 m.Code,
		Name:                 m.Name,
		Unit:                 m.Unit,
		Category:             m.Category,
		PurchasePrice:        m.PurchasePrice,
		SalePrice:            m.SalePrice,
		VATRate:              m.VATRate,
		MinStock:             m.MinStock,
		QuantityOnHand:       m.QuantityOnHand,
		Status:               m.Status,
	}
}

func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{
		Code:           p.Code,
		Name:           p.Name,
		Unit:           p.Unit,
		Category:       p.Category,
		PurchasePrice:  p.PurchasePrice,
		SalePrice:      p.SalePrice,
		VATRate:        p.VATRate,
		MinStock:       p.MinStock,
		QuantityOnHand: p.QuantityOnHand,
		Status:         p.Status,
	}
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	return m
}

type StockMovementModel struct {
	CompanyAggregateModel
	ProductID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type         inventory.MovementType `gorm:"type:varchar(20);not null;index"`
	Direction    inventory.Direction    `gorm:"type:varchar(3)"`
	Quantity     decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Reference    string                 `gorm:"type:varchar(100)"`
	FromLocation string                 `gorm:"type:varchar(100)"`
	ToLocation   string                 `gorm:"type:varchar(100)"`
	Notes        string                 `gorm:"type:text"`
	OccurredAt   time.Time              `gorm:"not null;index"`
	BalanceAfter decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
}

func (StockMovementModel) TableName() string {
	return "stock_movements"
}

func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		ProductID:            m.ProductID,
		Type:                 m.Type,
		Direction:            m.Direction,
		Quantity:             m.Quantity,
		UnitCost:             m.UnitCost,
		Reference:            m.Reference,
		FromLocation:         m.FromLocation,
		ToLocation:           m.ToLocation,
		Notes:                m.Notes,
		OccurredAt:           m.OccurredAt,
		BalanceAfter:         m.BalanceAfter,
	}
}

func StockMovementModelFromDomain(sm *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
		ProductID:    sm.ProductID,
		Type:         sm.Type,
		Direction:    sm.Direction,
		Quantity:     sm.Quantity,
		UnitCost:     sm.UnitCost,
		Reference:    sm.Reference,
		FromLocation: sm.FromLocation,
		ToLocation:   sm.ToLocation,
		Notes:        sm.Notes,
		OccurredAt:   sm.OccurredAt,
		BalanceAfter: sm.BalanceAfter,
	}
	m.FromDomainCompanyAggregateRoot(sm.CompanyAggregateRoot)
	return m
}

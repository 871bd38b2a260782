package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/procurement"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseOrderModel struct {
	CompanyAggregateModel
	Number       string                   `gorm:"type:varchar(50);not null"`
	SupplierName string                   `gorm:"type:varchar(200);not null"`
	SupplierCUI  string                   `gorm:"column:supplier_cui;type:varchar(20)"`
	OrderDate    time.Time                `gorm:"type:date;not null"`
	ExpectedDate *time.Time               `gorm:"type:date"`
	Currency     string                   `gorm:"type:varchar(3);not null;default:'RON'"`
	PaymentTerms string                   `gorm:"type:varchar(200)"`
	NetAmount    decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	VATAmount    decimal.Decimal          `gorm:"column:vat_amount;type:decimal(18,2);not null"`
	GrossAmount  decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Status       procurement.Status       `gorm:"type:varchar(30);not null;default:'draft';index"`
	Notes        string                   `gorm:"type:text"`
	ApprovedBy   *uuid.UUID               `gorm:"type:uuid"`
	ApprovedAt   *time.Time
	RejectReason string                   `gorm:"type:text"`
	SentAt       *time.Time
	ReceivedAt   *time.Time
	CancelReason string                   `gorm:"type:text"`
	CancelledAt  *time.Time
	Lines        []PurchaseOrderLineModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

type PurchaseOrderLineModel struct {
	ID               uuid.UUID              `gorm:"type:uuid;primary_key"`
	PurchaseOrderID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	LineNumber       int                    `gorm:"not null"`
	ProductID        *uuid.UUID             `gorm:"type:uuid"`
	Description      string                 `gorm:"type:varchar(500);not null"`
	Quantity         decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Unit             string                 `gorm:"type:varchar(20);not null;default:'buc'"`
	UnitPrice        decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	VATRate          decimal.Decimal        `gorm:"column:vat_rate;type:decimal(5,2);not null"`
	NetAmount        decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	VATAmount        decimal.Decimal        `gorm:"column:vat_amount;type:decimal(18,2);not null"`
	GrossAmount      decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	ReceivedQuantity decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Status           procurement.LineStatus `gorm:"type:varchar(30);not null;default:'open'"`
}

func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	po := &procurement.PurchaseOrder{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Number:               m.Number,
		Supplier:             procurement.Supplier{Name: m.SupplierName, CUI: m.SupplierCUI},
		OrderDate:            m.OrderDate,
		ExpectedDate:         m.ExpectedDate,
		Currency:             valueobject.Currency(m.Currency),
		PaymentTerms:         m.PaymentTerms,
		NetAmount:            m.NetAmount,
		VATAmount:            m.VATAmount,
		GrossAmount:          m.GrossAmount,
		Status:               m.Status,
		Notes:                m.Notes,
		ApprovedBy:           m.ApprovedBy,
		ApprovedAt:           m.ApprovedAt,
		RejectReason:         m.RejectReason,
		SentAt:               m.SentAt,
		ReceivedAt:           m.ReceivedAt,
		CancelReason:         m.CancelReason,
		CancelledAt:          m.CancelledAt,
		Lines:                make([]procurement.Line, len(m.Lines)),
	}
	for i, l := range m.Lines {
		po.Lines[i] = procurement.Line{
			ID:               l.ID,
			LineNumber:       l.LineNumber,
			ProductID:        l.ProductID,
			Description:      l.Description,
			Quantity:         l.Quantity,
			Unit:             l.Unit,
			UnitPrice:        l.UnitPrice,
			VATRate:          l.VATRate,
			NetAmount:        l.NetAmount,
			VATAmount:        l.VATAmount,
			GrossAmount:      l.GrossAmount,
			ReceivedQuantity: l.ReceivedQuantity,
			Status:           l.Status,
		}
	}
	return po
}

func PurchaseOrderModelFromDomain(po *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		Number:       po.Number,
		SupplierName: po.Supplier.Name,
		SupplierCUI:  po.Supplier.CUI,
		OrderDate:    po.OrderDate,
		ExpectedDate: po.ExpectedDate,
		Currency:     string(po.Currency),
		PaymentTerms: po.PaymentTerms,
		NetAmount:    po.NetAmount,
		VATAmount:    po.VATAmount,
		GrossAmount:  po.GrossAmount,
		Status:       po.Status,
		Notes:        po.Notes,
		ApprovedBy:   po.ApprovedBy,
		ApprovedAt:   po.ApprovedAt,
		RejectReason: po.RejectReason,
		SentAt:       po.SentAt,
		ReceivedAt:   po.ReceivedAt,
		CancelReason: po.CancelReason,
		CancelledAt:  po.CancelledAt,
		Lines:        make([]PurchaseOrderLineModel, len(po.Lines)),
	}
	m.FromDomainCompanyAggregateRoot(po.CompanyAggregateRoot)
	for i, l := range po.Lines {
		m.Lines[i] = PurchaseOrderLineModel{
			ID:               l.ID,
			PurchaseOrderID:  po.ID,
			LineNumber:       l.LineNumber,
			ProductID:        l.ProductID,
			Description:      l.Description,
			Quantity:         l.Quantity,
			Unit:             l.Unit,
			UnitPrice:        l.UnitPrice,
			VATRate:          l.VATRate,
			NetAmount:        l.NetAmount,
			VATAmount:        l.VATAmount,
			GrossAmount:      l.GrossAmount,
			ReceivedQuantity: l.ReceivedQuantity,
			Status:           l.Status,
		}
	}
	return m
}

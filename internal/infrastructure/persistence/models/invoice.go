package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceModel struct {
	CompanyAggregateModel
	ClientID           *uuid.UUID         `gorm:"type:uuid;index"`
	Series             string             `gorm:"type:varchar(20);not null"`
	Number             string             `gorm:"type:varchar(50);not null"`
	Type               invoice.Type       `gorm:"type:varchar(20);not null;default:'issued'"`
	IssueDate          time.Time          `gorm:"type:date;not null;index"`
	DueDate            *time.Time         `gorm:"type:date"`
	Currency           string             `gorm:"type:varchar(3);not null;default:'RON'"`
	ExchangeRate       decimal.Decimal    `gorm:"type:decimal(18,6);not null"`
	BaseCurrency       string             `gorm:"type:varchar(3);not null;default:'RON'"`
	PartnerName        string             `gorm:"type:varchar(200);not null"`
	PartnerCUI         string             `gorm:"column:partner_cui;type:varchar(20)"`
	PartnerAddress     string             `gorm:"type:text"`
	NetAmount          decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	VATAmount          decimal.Decimal    `gorm:"column:vat_amount;type:decimal(18,2);not null"`
	GrossAmount        decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	BaseNetAmount      decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	BaseVATAmount      decimal.Decimal    `gorm:"column:base_vat_amount;type:decimal(18,2);not null"`
	BaseGrossAmount    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Status             invoice.Status     `gorm:"type:varchar(20);not null;default:'draft';index"`
	PaidAt             *time.Time         `gorm:""`
	CancelledAt        *time.Time         `gorm:""`
	CancellationReason string             `gorm:"type:text"`
	Notes              string             `gorm:"type:text"`
	Lines              []InvoiceLineModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

type InvoiceLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber  int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(20);not null;default:'buc'"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VATRate     decimal.Decimal `gorm:"column:vat_rate;type:decimal(5,2);not null"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	VATAmount   decimal.Decimal `gorm:"column:vat_amount;type:decimal(18,2);not null"`
	GrossAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		ClientID:             m.ClientID,
		Series:               m.Series,
		Number:               m.Number,
		Type:                 m.Type,
		IssueDate:            m.IssueDate,
		DueDate:              m.DueDate,
		Currency:             valueobject.Currency(m.Currency),
		ExchangeRate:         m.ExchangeRate,
		BaseCurrency:         valueobject.Currency(m.BaseCurrency),
		Partner: invoice.Partner{
			Name:    m.PartnerName,
			CUI:     m.PartnerCUI,
			Address: m.PartnerAddress,
		},
		NetAmount:          m.NetAmount,
		VATAmount:          m.VATAmount,
		GrossAmount:        m.GrossAmount,
		BaseNetAmount:      m.BaseNetAmount,
		BaseVATAmount:      m.BaseVATAmount,
		BaseGrossAmount:    m.BaseGrossAmount,
		Status:             m.Status,
		PaidAt:             m.PaidAt,
		CancelledAt:        m.CancelledAt,
		CancellationReason: m.CancellationReason,
		Notes:              m.Notes,
		Lines:              make([]invoice.Line, len(m.Lines)),
	}
	for i, l := range m.Lines {
		inv.Lines[i] = invoice.Line{
			ID:          l.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			VATRate:     l.VATRate,
			NetAmount:   l.NetAmount,
			VATAmount:   l.VATAmount,
			GrossAmount: l.GrossAmount,
		}
	}
	return inv
}

func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		ClientID:           inv.ClientID,
		Series:             inv.Series,
		Number:             inv.Number,
		Type:               inv.Type,
		IssueDate:          inv.IssueDate,
		DueDate:            inv.DueDate,
		Currency:           string(inv.Currency),
		ExchangeRate:       inv.ExchangeRate,
		BaseCurrency:       string(inv.BaseCurrency),
		PartnerName:        inv.Partner.Name,
		PartnerCUI:         inv.Partner.CUI,
		PartnerAddress:     inv.Partner.Address,
		NetAmount:          inv.NetAmount,
		VATAmount:          inv.VATAmount,
		GrossAmount:        inv.GrossAmount,
		BaseNetAmount:      inv.BaseNetAmount,
		BaseVATAmount:      inv.BaseVATAmount,
		BaseGrossAmount:    inv.BaseGrossAmount,
		Status:             inv.Status,
		PaidAt:             inv.PaidAt,
		CancelledAt:        inv.CancelledAt,
		CancellationReason: inv.CancellationReason,
		Notes:              inv.Notes,
		Lines:              make([]InvoiceLineModel, len(inv.Lines)),
	}
	m.FromDomainCompanyAggregateRoot(inv.CompanyAggregateRoot)
	for i, l := range inv.Lines {
		m.Lines[i] = InvoiceLineModel{
			ID:          l.ID,
			InvoiceID:   inv.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			VATRate:     l.VATRate,
			NetAmount:   l.NetAmount,
			VATAmount:   l.VATAmount,
			GrossAmount: l.GrossAmount,
		}
	}
	return m
}

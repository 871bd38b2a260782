package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/receipt"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

type ReceiptModel struct {
	CompanyAggregateModel
	VendorName      string                `gorm:"type:varchar(200);not null"`
	VendorCUI       string                `gorm:"column:vendor_cui;type:varchar(20)"`
	ReceiptNumber   string                `gorm:"type:varchar(50)"`
	ReceiptDate     time.Time             `gorm:"type:date;not null;index"`
	TotalAmount     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	VATAmount       decimal.Decimal       `gorm:"column:vat_amount;type:decimal(18,2);not null"`
	Currency        string                `gorm:"type:varchar(3);not null;default:'RON'"`
	Category        string                `gorm:"type:varchar(100);index"`
	PaymentMethod   receipt.PaymentMethod `gorm:"type:varchar(20);not null"`
	ObjectKey       string                `gorm:"type:varchar(500)"`
	FileName        string                `gorm:"type:varchar(255)"`
	ContentType     string                `gorm:"type:varchar(100)"`
	FileSize        int64                 `gorm:"not null;default:0"`
	Status          receipt.Status        `gorm:"type:varchar(20);not null;default:'uploaded';index"`
	RejectionReason string                `gorm:"type:text"`
	VerifiedAt      *time.Time
	Notes           string                `gorm:"type:text"`
}

func (ReceiptModel) TableName() string {
	return "receipts"
}

func (m *ReceiptModel) ToDomain() *receipt.Receipt {
	return &receipt.Receipt{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		VendorName:           m.VendorName,
		VendorCUI:            m.VendorCUI,
		ReceiptNumber:        m.ReceiptNumber,
		ReceiptDate:          m.ReceiptDate,
		TotalAmount:          m.TotalAmount,
		VATAmount:            m.VATAmount,
		Currency:             valueobject.Currency(m.Currency),
		Category:             m.Category,
		PaymentMethod:        m.PaymentMethod,
		File: receipt.File{
			ObjectKey:   m.ObjectKey,
			FileName:    m.FileName,
			ContentType: m.ContentType,
			Size:        m.FileSize,
		},
		Status:          m.Status,
		RejectionReason: m.RejectionReason,
		VerifiedAt:      m.VerifiedAt,
		Notes:           m.Notes,
	}
}

func ReceiptModelFromDomain(r *receipt.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		VendorName:      r.VendorName,
		VendorCUI:       r.VendorCUI,
		ReceiptNumber:   r.ReceiptNumber,
		ReceiptDate:     r.ReceiptDate,
		TotalAmount:     r.TotalAmount,
		VATAmount:       r.VATAmount,
		Currency:        string(r.Currency),
		Category:        r.Category,
		PaymentMethod:   r.PaymentMethod,
		ObjectKey:       r.File.ObjectKey,
		FileName:        r.File.FileName,
		ContentType:     r.File.ContentType,
		FileSize:        r.File.Size,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		VerifiedAt:      r.VerifiedAt,
		Notes:           r.Notes,
	}
	m.FromDomainCompanyAggregateRoot(r.CompanyAggregateRoot)
	return m
}

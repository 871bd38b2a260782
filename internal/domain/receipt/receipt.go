// Package receipt stores scanned expense receipts and their verification state.
package receipt

import (
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxFileSize bounds uploaded receipt scans (10MB).
const MaxFileSize int64 = 10 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// IsAllowedContentType reports whether a scan of this MIME type may be stored.
func IsAllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[strings.ToLower(contentType)]
	return ok
}

// Extension returns the file extension used for the stored object.
func Extension(contentType string) string {
	return allowedContentTypes[strings.ToLower(contentType)]
}

type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (p PaymentMethod) IsValid() bool {
	return p == PaymentCash || p == PaymentCard || p == PaymentTransfer
}

// File describes the stored scan.
type File struct {
	ObjectKey   string
	FileName    string
	ContentType string
	Size        int64
}

// Details are the bookkeeping attributes read off the receipt.
type Details struct {
	VendorName    string
	VendorCUI     string
	ReceiptNumber string
	ReceiptDate   time.Time
	TotalAmount   decimal.Decimal
	VATAmount     decimal.Decimal
	Currency      valueobject.Currency
	Category      string
	PaymentMethod PaymentMethod
	Notes         string
}

type Receipt struct {
	shared.CompanyAggregateRoot
	VendorName      string
	VendorCUI       string
	ReceiptNumber   string
	ReceiptDate     time.Time
	TotalAmount     decimal.Decimal
	VATAmount       decimal.Decimal
	Currency        valueobject.Currency
	Category        string
	PaymentMethod   PaymentMethod
	File            File
	Status          Status
	RejectionReason string
	VerifiedAt      *time.Time
	Notes           string
}

func NewReceipt(tenantID, companyID uuid.UUID, details Details) (*Receipt, error) {
	r := &Receipt{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Status:               StatusUploaded,
	}
	if err := r.apply(details); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewReceiptEvent(EventTypeReceiptCreated, r))
	return r, nil
}

// ObjectKeyFor builds the storage key of a receipt scan.
func ObjectKeyFor(tenantID, companyID, receiptID uuid.UUID, contentType string) string {
	return "receipts/" + tenantID.String() + "/" + companyID.String() + "/" + receiptID.String() + Extension(contentType)
}

// AttachFile records the stored scan. Verified receipts keep their file.
func (r *Receipt) AttachFile(f File) error {
	if r.Status == StatusVerified {
		return shared.NewDomainError("RECEIPT_VERIFIED", "Verified receipts cannot be changed")
	}
	if !IsAllowedContentType(f.ContentType) {
		return shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "Only JPEG, PNG and PDF files are accepted")
	}
	if f.Size <= 0 || f.Size > MaxFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "Receipt files must be between 1 byte and 10MB")
	}
	if strings.TrimSpace(f.ObjectKey) == "" {
		return shared.NewDomainError("INVALID_FILE", "Object key is required")
	}
	r.File = f
	r.touch()
	return nil
}

func (r *Receipt) HasFile() bool {
	return r.File.ObjectKey != ""
}

func (r *Receipt) Update(details Details) error {
	if r.Status == StatusVerified {
		return shared.NewDomainError("RECEIPT_VERIFIED", "Verified receipts cannot be changed")
	}
	if err := r.apply(details); err != nil {
		return err
	}
	if r.Status == StatusRejected {
		r.Status = StatusUploaded
		r.RejectionReason = ""
	}
	r.touch()
	return nil
}

func (r *Receipt) Verify() error {
	if r.Status != StatusUploaded {
		return shared.NewDomainError("INVALID_TRANSITION", "Only uploaded receipts can be verified")
	}
	if !r.HasFile() {
		return shared.NewDomainError("FILE_REQUIRED", "A receipt needs an attached file before verification")
	}
	now := time.Now()
	r.Status = StatusVerified
	r.VerifiedAt = &now
	r.touch()
	r.AddDomainEvent(NewReceiptEvent(EventTypeReceiptVerified, r))
	return nil
}

func (r *Receipt) Reject(reason string) error {
	if r.Status != StatusUploaded {
		return shared.NewDomainError("INVALID_TRANSITION", "Only uploaded receipts can be rejected")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "A rejection reason is required")
	}
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.touch()
	r.AddDomainEvent(NewReceiptEvent(EventTypeReceiptRejected, r))
	return nil
}

func (r *Receipt) NetAmount() decimal.Decimal {
	return r.TotalAmount.Sub(r.VATAmount)
}

func (r *Receipt) apply(d Details) error {
	vendor := strings.TrimSpace(d.VendorName)
	if vendor == "" {
		return shared.NewDomainError("INVALID_VENDOR", "Vendor name is required")
	}
	cui := strings.TrimSpace(d.VendorCUI)
	if cui != "" {
		if err := valueobject.ValidateCUI(cui); err != nil {
			return shared.NewDomainError("INVALID_CUI", err.Error())
		}
		cui = valueobject.NormalizeCUI(cui)
	}
	if d.ReceiptDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Receipt date is required")
	}
	if d.TotalAmount.IsNegative() || d.VATAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
	}
	if d.VATAmount.GreaterThan(d.TotalAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", "VAT cannot exceed the total amount")
	}
	currency := d.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if _, err := valueobject.ParseCurrency(string(currency)); err != nil {
		return shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	method := d.PaymentMethod
	if method == "" {
		method = PaymentCash
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be cash, card or transfer")
	}
	r.VendorName = vendor
	r.VendorCUI = cui
	r.ReceiptNumber = strings.TrimSpace(d.ReceiptNumber)
	r.ReceiptDate = d.ReceiptDate
	r.TotalAmount = valueobject.Round2(d.TotalAmount)
	r.VATAmount = valueobject.Round2(d.VATAmount)
	r.Currency = currency
	r.Category = strings.TrimSpace(strings.ToLower(d.Category))
	r.PaymentMethod = method
	r.Notes = d.Notes
	return nil
}

func (r *Receipt) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

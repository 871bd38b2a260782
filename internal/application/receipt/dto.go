package receipt

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/receipt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ReceiptRequest carries the bookkeeping attributes; used for create and update.
type ReceiptRequest struct {
	VendorName    string          `json:"vendor_name" binding:"required,min=1,max=200"`
	VendorCUI     string          `json:"vendor_cui" binding:"omitempty,cui"`
	ReceiptNumber string          `json:"receipt_number" binding:"max=50"`
	ReceiptDate   string          `json:"receipt_date" binding:"required,datetime=2006-01-02"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	Currency      string          `json:"currency" binding:"omitempty,len=3"`
	Category      string          `json:"category" binding:"max=50"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash card transfer"`
	Notes         string          `json:"notes" binding:"max=1000"`

	CreatedBy *uuid.UUID `json:"-"`
}

// UploadURLRequest asks for a presigned PUT URL for the receipt scan.
type UploadURLRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

type UploadURLResponse struct {
	UploadURL string    `json:"upload_url"`
	ObjectKey string    `json:"object_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmUploadRequest attaches an object uploaded through a presigned URL.
type ConfirmUploadRequest struct {
	ObjectKey   string `json:"object_key" binding:"required"`
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

type ReceiptListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=uploaded verified rejected"`
	Category string `form:"category"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

type ReceiptResponse struct {
	ID              uuid.UUID       `json:"id"`
	CompanyID       uuid.UUID       `json:"company_id"`
	VendorName      string          `json:"vendor_name"`
	VendorCUI       string          `json:"vendor_cui,omitempty"`
	ReceiptNumber   string          `json:"receipt_number,omitempty"`
	ReceiptDate     string          `json:"receipt_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	Currency        string          `json:"currency"`
	Category        string          `json:"category,omitempty"`
	PaymentMethod   string          `json:"payment_method"`
	FileName        string          `json:"file_name,omitempty"`
	ContentType     string          `json:"content_type,omitempty"`
	FileSize        int64           `json:"file_size,omitempty"`
	DownloadURL     string          `json:"download_url,omitempty"`
	Status          string          `json:"status"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

func ToReceiptResponse(r *receipt.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:              r.ID,
		CompanyID:       r.CompanyID,
		VendorName:      r.VendorName,
		VendorCUI:       r.VendorCUI,
		ReceiptNumber:   r.ReceiptNumber,
		ReceiptDate:     r.ReceiptDate.Format(dateLayout),
		TotalAmount:     r.TotalAmount,
		VATAmount:       r.VATAmount,
		NetAmount:       r.NetAmount(),
		Currency:        string(r.Currency),
		Category:        r.Category,
		PaymentMethod:   string(r.PaymentMethod),
		FileName:        r.File.FileName,
		ContentType:     r.File.ContentType,
		FileSize:        r.File.Size,
		Status:          string(r.Status),
		RejectionReason: r.RejectionReason,
		VerifiedAt:      r.VerifiedAt,
		Notes:           r.Notes,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Version:         r.Version,
	}
}

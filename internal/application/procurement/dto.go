package procurement

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type LineRequest struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit" binding:"max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate" binding:"vat_rate"`
}

// CreatePurchaseOrderRequest represents a request to create a draft purchase order
type CreatePurchaseOrderRequest struct {
	SupplierName string        `json:"supplier_name" binding:"required,min=1,max=200"`
	SupplierCUI  string        `json:"supplier_cui" binding:"omitempty,cui"`
	OrderDate    string        `json:"order_date" binding:"omitempty,datetime=2006-01-02"`
	ExpectedDate string        `json:"expected_date" binding:"omitempty,datetime=2006-01-02"`
	Currency     string        `json:"currency" binding:"omitempty,len=3"`
	PaymentTerms string        `json:"payment_terms" binding:"max=200"`
	Lines        []LineRequest `json:"lines" binding:"max=500,dive"`
	Notes        string        `json:"notes"`

	CreatedBy *uuid.UUID `json:"-"`
}

// UpdatePurchaseOrderRequest replaces header and lines of a draft
type UpdatePurchaseOrderRequest = CreatePurchaseOrderRequest

type ReasonRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type ReceiveItemRequest struct {
	LineID   uuid.UUID       `json:"line_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

type ReceiveRequest struct {
	Items []ReceiveItemRequest `json:"items" binding:"required,min=1,dive"`
}

type PurchaseOrderListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

type LineResponse struct {
	ID               uuid.UUID       `json:"id"`
	LineNumber       int             `json:"line_number"`
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	Unit             string          `json:"unit"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	VATRate          decimal.Decimal `json:"vat_rate"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	Remaining        decimal.Decimal `json:"remaining_quantity"`
	Status           string          `json:"status"`
}

type PurchaseOrderResponse struct {
	ID           uuid.UUID       `json:"id"`
	CompanyID    uuid.UUID       `json:"company_id"`
	Number       string          `json:"number"`
	SupplierName string          `json:"supplier_name"`
	SupplierCUI  string          `json:"supplier_cui,omitempty"`
	OrderDate    string          `json:"order_date"`
	ExpectedDate *string         `json:"expected_date,omitempty"`
	Currency     string          `json:"currency"`
	PaymentTerms string          `json:"payment_terms,omitempty"`
	Lines        []LineResponse  `json:"lines"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	VATAmount    decimal.Decimal `json:"vat_amount"`
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	Status       string          `json:"status"`
	Notes        string          `json:"notes,omitempty"`
	ApprovedBy   *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	RejectReason string          `json:"reject_reason,omitempty"`
	SentAt       *time.Time      `json:"sent_at,omitempty"`
	ReceivedAt   *time.Time      `json:"received_at,omitempty"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ReceiveResponse is the order after a goods receipt plus the stock bookings
// that could not be made.
type ReceiveResponse struct {
	PurchaseOrderResponse
	StockWarnings []string `json:"stock_warnings,omitempty"`
}

func ToPurchaseOrderResponse(po *procurement.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]LineResponse, len(po.Lines))
	for i := range po.Lines {
		l := &po.Lines[i]
		lines[i] = LineResponse{
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
			Remaining:        l.RemainingQuantity(),
			Status:           string(l.Status),
		}
	}
	resp := PurchaseOrderResponse{
		ID:           po.ID,
		CompanyID:    po.CompanyID,
		Number:       po.Number,
		SupplierName: po.Supplier.Name,
		SupplierCUI:  po.Supplier.CUI,
		OrderDate:    po.OrderDate.Format(dateLayout),
		Currency:     string(po.Currency),
		PaymentTerms: po.PaymentTerms,
		Lines:        lines,
		NetAmount:    po.NetAmount,
		VATAmount:    po.VATAmount,
		GrossAmount:  po.GrossAmount,
		Status:       string(po.Status),
		Notes:        po.Notes,
		ApprovedBy:   po.ApprovedBy,
		ApprovedAt:   po.ApprovedAt,
		RejectReason: po.RejectReason,
		SentAt:       po.SentAt,
		ReceivedAt:   po.ReceivedAt,
		CancelReason: po.CancelReason,
		CancelledAt:  po.CancelledAt,
		CreatedBy:    po.CreatedBy,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
		Version:      po.Version,
	}
	if po.ExpectedDate != nil {
		d := po.ExpectedDate.Format(dateLayout)
		resp.ExpectedDate = &d
	}
	return resp
}

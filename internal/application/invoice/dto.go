package invoice

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// LineRequest is one invoice line as sent by clients
type LineRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit" binding:"max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate" binding:"vat_rate"`
}

// CreateInvoiceRequest represents a request to create an invoice.
// Number is generated from the series when omitted; ExchangeRate is fetched from BNR when omitted.
type CreateInvoiceRequest struct {
	ClientID       *uuid.UUID       `json:"client_id"`
	Series         string           `json:"series" binding:"omitempty,max=10,alphanum"`
	Number         string           `json:"number" binding:"max=30"`
	Type           string           `json:"type" binding:"omitempty,oneof=issued received"`
	IssueDate      string           `json:"issue_date" binding:"required,datetime=2006-01-02"`
	DueDate        string           `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Currency       string           `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate   *decimal.Decimal `json:"exchange_rate"`
	PartnerName    string           `json:"partner_name" binding:"max=200"`
	PartnerCUI     string           `json:"partner_cui" binding:"max=20"`
	PartnerAddress string           `json:"partner_address" binding:"max=500"`
	Lines          []LineRequest    `json:"lines" binding:"required,min=1,max=500,dive"`
	Notes          string           `json:"notes"`

	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateInvoiceRequest replaces the header and lines of a draft
type UpdateInvoiceRequest struct {
	ClientID       *uuid.UUID       `json:"client_id"`
	IssueDate      string           `json:"issue_date" binding:"required,datetime=2006-01-02"`
	DueDate        string           `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Currency       string           `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate   *decimal.Decimal `json:"exchange_rate"`
	PartnerName    string           `json:"partner_name" binding:"max=200"`
	PartnerCUI     string           `json:"partner_cui" binding:"max=20"`
	PartnerAddress string           `json:"partner_address" binding:"max=500"`
	Lines          []LineRequest    `json:"lines" binding:"required,min=1,max=500,dive"`
	Notes          string           `json:"notes"`
}

// MarkPaidRequest carries the payment date; today when omitted.
type MarkPaidRequest struct {
	PaidAt string `json:"paid_at" binding:"omitempty,datetime=2006-01-02"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=draft pending submitted approved paid cancelled"`
	Type     string `form:"type" binding:"omitempty,oneof=issued received"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SummaryFilter bounds the summary period; the current month when empty.
type SummaryFilter struct {
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                 uuid.UUID       `json:"id"`
	CompanyID          uuid.UUID       `json:"company_id"`
	ClientID           *uuid.UUID      `json:"client_id,omitempty"`
	Series             string          `json:"series"`
	Number             string          `json:"number"`
	Type               string          `json:"type"`
	IssueDate          string          `json:"issue_date"`
	DueDate            *string         `json:"due_date,omitempty"`
	Currency           string          `json:"currency"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate"`
	BaseCurrency       string          `json:"base_currency"`
	PartnerName        string          `json:"partner_name"`
	PartnerCUI         string          `json:"partner_cui"`
	PartnerAddress     string          `json:"partner_address"`
	Lines              []LineResponse  `json:"lines"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	VATAmount          decimal.Decimal `json:"vat_amount"`
	GrossAmount        decimal.Decimal `json:"gross_amount"`
	BaseNetAmount      decimal.Decimal `json:"base_net_amount"`
	BaseVATAmount      decimal.Decimal `json:"base_vat_amount"`
	BaseGrossAmount    decimal.Decimal `json:"base_gross_amount"`
	Status             string          `json:"status"`
	Overdue            bool            `json:"overdue"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// InvoiceListResponse is the lighter list item
type InvoiceListResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	Type        string          `json:"type"`
	IssueDate   string          `json:"issue_date"`
	DueDate     *string         `json:"due_date,omitempty"`
	PartnerName string          `json:"partner_name"`
	Currency    string          `json:"currency"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
	Status      string          `json:"status"`
	Overdue     bool            `json:"overdue"`
}

type TransitionsResponse struct {
	Status      string   `json:"status"`
	Transitions []string `json:"transitions"`
}

type StatusSummary struct {
	Status      string          `json:"status"`
	Count       int64           `json:"count"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
}

type SummaryResponse struct {
	FromDate   string          `json:"from_date"`
	ToDate     string          `json:"to_date"`
	TotalCount int64           `json:"total_count"`
	TotalNet   decimal.Decimal `json:"total_net"`
	TotalVAT   decimal.Decimal `json:"total_vat"`
	TotalGross decimal.Decimal `json:"total_gross"`
	ByStatus   []StatusSummary `json:"by_status"`
}

// =============================================================================
// Bulk operations
// =============================================================================

type BulkStatusRequest struct {
	IDs    []uuid.UUID `json:"ids" binding:"required,min=1,max=100"`
	Status string      `json:"status" binding:"required,oneof=pending submitted approved paid cancelled"`
	PaidAt string      `json:"paid_at" binding:"omitempty,datetime=2006-01-02"`
	Reason string      `json:"reason" binding:"max=500"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=100"`
}

type BulkSuccessItem struct {
	ID             uuid.UUID `json:"id"`
	Number         string    `json:"number"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status,omitempty"`
}

type BulkFailedItem struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number,omitempty"`
	ErrorCode string    `json:"error_code"`
	Error     string    `json:"error"`
}

type BulkSummary struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type BulkResult struct {
	Success []BulkSuccessItem `json:"success"`
	Failed  []BulkFailedItem  `json:"failed"`
	Summary BulkSummary       `json:"summary"`
}

func ToInvoiceResponse(inv *invoice.Invoice, now time.Time) InvoiceResponse {
	lines := make([]LineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = LineResponse{
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
	return InvoiceResponse{
		ID:                 inv.ID,
		CompanyID:          inv.CompanyID,
		ClientID:           inv.ClientID,
		Series:             inv.Series,
		Number:             inv.Number,
		Type:               string(inv.Type),
		IssueDate:          inv.IssueDate.Format(dateLayout),
		DueDate:            formatDate(inv.DueDate),
		Currency:           string(inv.Currency),
		ExchangeRate:       inv.ExchangeRate,
		BaseCurrency:       string(inv.BaseCurrency),
		PartnerName:        inv.Partner.Name,
		PartnerCUI:         inv.Partner.CUI,
		PartnerAddress:     inv.Partner.Address,
		Lines:              lines,
		NetAmount:          inv.NetAmount,
		VATAmount:          inv.VATAmount,
		GrossAmount:        inv.GrossAmount,
		BaseNetAmount:      inv.BaseNetAmount,
		BaseVATAmount:      inv.BaseVATAmount,
		BaseGrossAmount:    inv.BaseGrossAmount,
		Status:             string(inv.Status),
		Overdue:            inv.IsOverdue(now),
		PaidAt:             inv.PaidAt,
		CancelledAt:        inv.CancelledAt,
		CancellationReason: inv.CancellationReason,
		Notes:              inv.Notes,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
		Version:            inv.Version,
	}
}

func ToInvoiceListResponse(inv *invoice.Invoice, now time.Time) InvoiceListResponse {
	return InvoiceListResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		Type:        string(inv.Type),
		IssueDate:   inv.IssueDate.Format(dateLayout),
		DueDate:     formatDate(inv.DueDate),
		PartnerName: inv.Partner.Name,
		Currency:    string(inv.Currency),
		GrossAmount: inv.GrossAmount,
		Status:      string(inv.Status),
		Overdue:     inv.IsOverdue(now),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

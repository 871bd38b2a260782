package efactura

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/efactura"
	"github.com/google/uuid"
)

// SubmitRequest uploads one invoice. Force re-uploads even when ANAF already holds it.
type SubmitRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id" binding:"required"`
	Force     bool      `json:"force"`
}

// BatchSubmitRequest uploads several invoices in order. ContinueOnError defaults to true.
type BatchSubmitRequest struct {
	InvoiceIDs      []uuid.UUID `json:"invoice_ids" binding:"required,min=1,max=100"`
	ContinueOnError *bool       `json:"continue_on_error"`
	Force           bool        `json:"force"`
}

type SubmissionListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=pending processing accepted rejected error"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

type AnalyticsFilter struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// SubmissionResponse represents an e-Factura submission in API responses
type SubmissionResponse struct {
	ID            uuid.UUID  `json:"id"`
	CompanyID     uuid.UUID  `json:"company_id"`
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	InvoiceNumber string     `json:"invoice_number"`
	Status        string     `json:"status"`
	UploadIndex   string     `json:"upload_index,omitempty"`
	DownloadID    string     `json:"download_id,omitempty"`
	ANAFStatus    string     `json:"anaf_status,omitempty"`
	ANAFMessage   string     `json:"anaf_message,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	AttemptCount  int        `json:"attempt_count"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	ValidatedAt   *time.Time `json:"validated_at,omitempty"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type BatchItemResult struct {
	InvoiceID    uuid.UUID  `json:"invoice_id"`
	Success      bool       `json:"success"`
	Skipped      bool       `json:"skipped,omitempty"`
	SubmissionID *uuid.UUID `json:"submission_id,omitempty"`
	UploadIndex  string     `json:"upload_index,omitempty"`
	Error        string     `json:"error,omitempty"`
}

type BatchResult struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Results []BatchItemResult `json:"results"`
}

type SyncResult struct {
	Total   int `json:"total"`
	Synced  int `json:"synced"`
	Updated int `json:"updated"`
}

type AnalyticsResponse struct {
	Since       time.Time `json:"since"`
	Total       int64     `json:"total"`
	Accepted    int64     `json:"accepted"`
	Rejected    int64     `json:"rejected"`
	Errors      int64     `json:"errors"`
	Processing  int64     `json:"processing"`
	Pending     int64     `json:"pending"`
	AvgAttempts float64   `json:"avg_attempts"`
	SuccessRate float64   `json:"success_rate"`
}

type XMLURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func ToSubmissionResponse(s *efactura.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:            s.ID,
		CompanyID:     s.CompanyID,
		InvoiceID:     s.InvoiceID,
		InvoiceNumber: s.InvoiceNumber,
		Status:        string(s.Status),
		UploadIndex:   s.UploadIndex,
		DownloadID:    s.DownloadID,
		ANAFStatus:    s.ANAFStatus,
		ANAFMessage:   s.ANAFMessage,
		ErrorMessage:  s.ErrorMessage,
		AttemptCount:  s.AttemptCount,
		NextAttemptAt: s.NextAttemptAt,
		SubmittedAt:   s.SubmittedAt,
		ValidatedAt:   s.ValidatedAt,
		LastSyncAt:    s.LastSyncAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func ToSubmissionResponses(subs []efactura.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, len(subs))
	for i := range subs {
		out[i] = ToSubmissionResponse(&subs[i])
	}
	return out
}

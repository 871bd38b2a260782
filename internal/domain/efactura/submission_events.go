package efactura

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeSubmission = "EFacturaSubmission"

const (
	EventTypeSubmissionCreated       = "EFacturaSubmissionCreated"
	EventTypeSubmissionStatusChanged = "EFacturaSubmissionStatusChanged"
)

type SubmissionCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
}

func NewSubmissionCreatedEvent(s *Submission) *SubmissionCreatedEvent {
	return &SubmissionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubmissionCreated, AggregateTypeSubmission, s.ID, s.TenantID),
		CompanyID:       s.CompanyID,
		InvoiceID:       s.InvoiceID,
	}
}

type SubmissionStatusChangedEvent struct {
	shared.BaseDomainEvent
	CompanyID      uuid.UUID `json:"company_id"`
	InvoiceID      uuid.UUID `json:"invoice_id"`
	InvoiceNumber  string    `json:"invoice_number"`
	UploadIndex    string    `json:"upload_index,omitempty"`
	PreviousStatus Status    `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	Message        string    `json:"message,omitempty"`
}

func NewSubmissionStatusChangedEvent(s *Submission, previous, next Status) *SubmissionStatusChangedEvent {
	msg := s.ANAFMessage
	if msg == "" {
		msg = s.ErrorMessage
	}
	return &SubmissionStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubmissionStatusChanged, AggregateTypeSubmission, s.ID, s.TenantID),
		CompanyID:       s.CompanyID,
		InvoiceID:       s.InvoiceID,
		InvoiceNumber:   s.InvoiceNumber,
		UploadIndex:     s.UploadIndex,
		PreviousStatus:  previous,
		NewStatus:       next,
		Message:         msg,
	}
}

// Package efactura tracks the upload of invoices to the ANAF e-Factura system (SPV).
package efactura

import (
	"fmt"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status of a submission as seen by this system.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusError      Status = "error"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusAccepted, StatusRejected, StatusError:
		return true
	}
	return false
}

// ANAF "stare" values returned by the stareMesaj endpoint.
const (
	ANAFStateOK         = "ok"
	ANAFStateNOK        = "nok"
	ANAFStateInProgress = "in prelucrare"
	ANAFStateXMLErrors  = "XML cu erori nepreluat de sistem"
)

// Submission is one attempt chain to deliver an invoice to ANAF.
type Submission struct {
	shared.CompanyAggregateRoot
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Status        Status
	UploadIndex   string
	DownloadID    string
	XMLObjectKey  string
	ANAFStatus    string
	ANAFMessage   string
	ErrorMessage  string
	AttemptCount  int
	NextAttemptAt *time.Time
	SubmittedAt   *time.Time
	ValidatedAt   *time.Time
	LastSyncAt    *time.Time
}

func NewSubmission(tenantID, companyID, invoiceID uuid.UUID, invoiceNumber string) (*Submission, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID is required")
	}
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice number is required")
	}
	s := &Submission{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		InvoiceID:            invoiceID,
		InvoiceNumber:        invoiceNumber,
		Status:               StatusPending,
	}
	s.AddDomainEvent(NewSubmissionCreatedEvent(s))
	return s, nil
}

// IsInFlight reports whether ANAF already holds this invoice, so a new upload would duplicate it.
func (s *Submission) IsInFlight() bool {
	return s.Status == StatusProcessing || s.Status == StatusAccepted
}

func (s *Submission) AttachXML(objectKey string) {
	s.XMLObjectKey = objectKey
	s.touch()
}

// BeginAttempt counts an upload attempt; only pending submissions can be uploaded.
func (s *Submission) BeginAttempt() error {
	if s.Status != StatusPending {
		return s.invalidTransition(StatusProcessing)
	}
	s.AttemptCount++
	s.touch()
	return nil
}

// MarkUploaded records the upload index ANAF assigned; processing starts on their side.
func (s *Submission) MarkUploaded(uploadIndex string) error {
	if s.Status != StatusPending {
		return s.invalidTransition(StatusProcessing)
	}
	if strings.TrimSpace(uploadIndex) == "" {
		return shared.NewDomainError("INVALID_UPLOAD_INDEX", "ANAF returned no upload index")
	}
	now := time.Now()
	s.UploadIndex = uploadIndex
	s.SubmittedAt = &now
	s.ErrorMessage = ""
	s.NextAttemptAt = nil
	s.changeStatus(StatusProcessing)
	return nil
}

// MarkFailed moves a pending submission to error. nextAttempt schedules an automatic retry; nil means none.
func (s *Submission) MarkFailed(message string, nextAttempt *time.Time) error {
	if s.Status != StatusPending {
		return s.invalidTransition(StatusError)
	}
	s.ErrorMessage = message
	s.NextAttemptAt = nextAttempt
	s.changeStatus(StatusError)
	return nil
}

// ApplyANAFState maps the "stare" of a status check onto the submission.
// It returns true when the submission reached a final verdict.
func (s *Submission) ApplyANAFState(stare, downloadID, message string) (bool, error) {
	if s.Status != StatusProcessing {
		return false, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot check status of a %s submission", s.Status))
	}
	now := time.Now()
	s.ANAFStatus = stare
	s.ANAFMessage = message
	s.LastSyncAt = &now
	if downloadID != "" {
		s.DownloadID = downloadID
	}

	switch strings.ToLower(strings.TrimSpace(stare)) {
	case ANAFStateOK:
		s.ValidatedAt = &now
		s.changeStatus(StatusAccepted)
		return true, nil
	case ANAFStateNOK:
		s.ErrorMessage = message
		s.changeStatus(StatusRejected)
		return true, nil
	default:
		s.touch()
		return false, nil
	}
}

// Resubmit puts a failed or rejected submission back in the queue.
func (s *Submission) Resubmit() error {
	if s.Status != StatusError && s.Status != StatusRejected {
		return s.invalidTransition(StatusPending)
	}
	s.UploadIndex = ""
	s.DownloadID = ""
	s.ANAFStatus = ""
	s.ANAFMessage = ""
	s.ErrorMessage = ""
	s.NextAttemptAt = nil
	s.SubmittedAt = nil
	s.changeStatus(StatusPending)
	return nil
}

// DueForRetry reports whether the background worker should resubmit this submission.
func (s *Submission) DueForRetry(now time.Time, maxAttempts int) bool {
	if s.Status != StatusError || s.NextAttemptAt == nil {
		return false
	}
	if maxAttempts > 0 && s.AttemptCount >= maxAttempts {
		return false
	}
	return !s.NextAttemptAt.After(now)
}

func (s *Submission) changeStatus(next Status) {
	previous := s.Status
	s.Status = next
	s.touch()
	s.AddDomainEvent(NewSubmissionStatusChangedEvent(s, previous, next))
}

func (s *Submission) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

func (s *Submission) invalidTransition(target Status) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot move e-Factura submission from %s to %s", s.Status, target))
}

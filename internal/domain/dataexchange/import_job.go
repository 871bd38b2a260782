package dataexchange

import (
	"fmt"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxRecordedErrors caps the row errors kept on an import job.
const MaxRecordedErrors = 500

// RowError describes why one CSV row was not imported.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ImportJob is the outcome of one CSV upload. Imports run synchronously, so the
// job is created already finished.
type ImportJob struct {
	shared.CompanyAggregateRoot
	Entity       Entity
	FileName     string
	FileSize     int64
	ConflictMode ConflictMode
	Status       JobStatus
	TotalRows    int
	Imported     int
	Updated      int
	Skipped      int
	Errors       []RowError
	CompletedAt  *time.Time
}

func NewImportJob(tenantID, companyID uuid.UUID, entity Entity, fileName string, fileSize int64, mode ConflictMode) (*ImportJob, error) {
	if !entity.IsImportable() {
		return nil, shared.NewDomainError("INVALID_ENTITY", fmt.Sprintf("Cannot import %s", entity))
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}
	if mode == "" {
		mode = ConflictModeSkip
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFLICT_MODE", fmt.Sprintf("Invalid conflict mode: %s", mode))
	}
	return &ImportJob{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Entity:               entity,
		FileName:             fileName,
		FileSize:             fileSize,
		ConflictMode:         mode,
		Status:               JobStatusProcessing,
		Errors:               make([]RowError, 0),
	}, nil
}

// AddError records a row failure, keeping at most MaxRecordedErrors details.
func (j *ImportJob) AddError(row int, field, message string) {
	if len(j.Errors) < MaxRecordedErrors {
		j.Errors = append(j.Errors, RowError{Row: row, Field: field, Message: message})
	}
}

// Finish settles the counters. An import with rows that all failed is failed.
func (j *ImportJob) Finish(total, imported, updated, skipped int) {
	j.TotalRows = total
	j.Imported = imported
	j.Updated = updated
	j.Skipped = skipped
	j.Status = JobStatusCompleted
	if total > 0 && imported == 0 && updated == 0 && skipped == 0 {
		j.Status = JobStatusFailed
	}
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
}

// Abort marks the whole file as rejected, for example on a missing header.
func (j *ImportJob) Abort(message string) {
	j.AddError(0, "", message)
	j.Status = JobStatusFailed
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
}

func (j *ImportJob) FailedRows() int {
	failed := j.TotalRows - j.Imported - j.Updated - j.Skipped
	if failed < 0 {
		return 0
	}
	return failed
}

// SuccessRate is the share of rows imported or updated, in percent.
func (j *ImportJob) SuccessRate() float64 {
	if j.TotalRows == 0 {
		return 0
	}
	return float64(j.Imported+j.Updated) / float64(j.TotalRows) * 100
}

package dataexchange

import (
	"fmt"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// ExportJob is an asynchronous dump of one entity to object storage.
type ExportJob struct {
	shared.CompanyAggregateRoot
	Entity      Entity
	Format      Format
	Filters     map[string]string
	Status      JobStatus
	ObjectKey   string
	RowCount    int
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func NewExportJob(tenantID, companyID uuid.UUID, entity Entity, format Format, filters map[string]string) (*ExportJob, error) {
	if !entity.IsExportable() {
		return nil, shared.NewDomainError("INVALID_ENTITY", fmt.Sprintf("Cannot export %s", entity))
	}
	if format == "" {
		format = FormatCSV
	}
	if !format.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", "Format must be csv or json")
	}
	if filters == nil {
		filters = map[string]string{}
	}
	return &ExportJob{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Entity:               entity,
		Format:               format,
		Filters:              filters,
		Status:               JobStatusPending,
	}, nil
}

// ObjectKeyFor returns where the job's output file is stored.
func (j *ExportJob) ObjectKeyFor() string {
	return fmt.Sprintf("exports/%s/%s/%s-%s.%s", j.TenantID, j.CompanyID, j.Entity, j.ID, j.Format)
}

// FileName is the download name offered to the user.
func (j *ExportJob) FileName() string {
	return fmt.Sprintf("%s-%s.%s", j.Entity, j.CreatedAt.Format("20060102-150405"), j.Format)
}

func (j *ExportJob) Start() error {
	if j.Status != JobStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start an export in %s status", j.Status))
	}
	now := time.Now()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.touch()
	return nil
}

func (j *ExportJob) Complete(objectKey string, rows int) error {
	if j.Status != JobStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete an export in %s status", j.Status))
	}
	now := time.Now()
	j.Status = JobStatusCompleted
	j.ObjectKey = objectKey
	j.RowCount = rows
	j.CompletedAt = &now
	j.touch()
	return nil
}

func (j *ExportJob) Fail(reason string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail an export in %s status", j.Status))
	}
	now := time.Now()
	j.Status = JobStatusFailed
	j.Error = reason
	j.CompletedAt = &now
	j.touch()
	return nil
}

// Cancel is only possible before a worker picks the job up.
func (j *ExportJob) Cancel() error {
	if j.Status != JobStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending exports can be cancelled")
	}
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
	j.touch()
	return nil
}

func (j *ExportJob) IsDownloadable() bool {
	return j.Status == JobStatusCompleted && j.ObjectKey != ""
}

func (j *ExportJob) touch() {
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
}

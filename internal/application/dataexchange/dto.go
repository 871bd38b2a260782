package dataexchange

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/google/uuid"
)

type CreateExportRequest struct {
	Entity  string            `json:"entity" binding:"required,oneof=clients projects invoices products employees"`
	Format  string            `json:"format" binding:"omitempty,oneof=csv json"`
	Filters map[string]string `json:"filters"`
}

type ExportListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending processing completed failed cancelled"`
	Entity   string `form:"entity"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type ExportJobResponse struct {
	ID          uuid.UUID         `json:"id"`
	CompanyID   uuid.UUID         `json:"company_id"`
	Entity      string            `json:"entity"`
	Format      string            `json:"format"`
	Filters     map[string]string `json:"filters"`
	Status      string            `json:"status"`
	RowCount    int               `json:"row_count"`
	Error       string            `json:"error,omitempty"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

type DownloadResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImportRequest holds the multipart form fields that accompany the CSV file.
type ImportRequest struct {
	Entity       string `form:"entity" binding:"required,oneof=clients products"`
	ConflictMode string `form:"conflict_mode" binding:"omitempty,oneof=skip update fail"`
}

type ImportListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=completed failed"`
	Entity   string `form:"entity"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type ImportJobResponse struct {
	ID           uuid.UUID               `json:"id"`
	CompanyID    uuid.UUID               `json:"company_id"`
	Entity       string                  `json:"entity"`
	FileName     string                  `json:"file_name"`
	FileSize     int64                   `json:"file_size"`
	ConflictMode string                  `json:"conflict_mode"`
	Status       string                  `json:"status"`
	TotalRows    int                     `json:"total_rows"`
	Imported     int                     `json:"imported"`
	Updated      int                     `json:"updated"`
	Skipped      int                     `json:"skipped"`
	Failed       int                     `json:"failed"`
	SuccessRate  float64                 `json:"success_rate"`
	Errors       []dataexchange.RowError `json:"errors"`
	CompletedAt  *time.Time              `json:"completed_at,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

func ToExportJobResponse(j *dataexchange.ExportJob) ExportJobResponse {
	return ExportJobResponse{
		ID:          j.ID,
		CompanyID:   j.CompanyID,
		Entity:      string(j.Entity),
		Format:      string(j.Format),
		Filters:     j.Filters,
		Status:      string(j.Status),
		RowCount:    j.RowCount,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		CreatedAt:   j.CreatedAt,
	}
}

func ToImportJobResponse(j *dataexchange.ImportJob) ImportJobResponse {
	errs := j.Errors
	if errs == nil {
		errs = []dataexchange.RowError{}
	}
	return ImportJobResponse{
		ID:           j.ID,
		CompanyID:    j.CompanyID,
		Entity:       string(j.Entity),
		FileName:     j.FileName,
		FileSize:     j.FileSize,
		ConflictMode: string(j.ConflictMode),
		Status:       string(j.Status),
		TotalRows:    j.TotalRows,
		Imported:     j.Imported,
		Updated:      j.Updated,
		Skipped:      j.Skipped,
		Failed:       j.FailedRows(),
		SuccessRate:  j.SuccessRate(),
		Errors:       errs,
		CompletedAt:  j.CompletedAt,
		CreatedAt:    j.CreatedAt,
	}
}

package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"gorm.io/datatypes"
)

type ExportJobModel struct {
	CompanyAggregateModel
	Entity      dataexchange.Entity    `gorm:"type:varchar(20);not null"`
	Format      dataexchange.Format    `gorm:"type:varchar(10);not null"`
	Filters     datatypes.JSON         `gorm:"type:jsonb;not null"`
	Status      dataexchange.JobStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ObjectKey   string                 `gorm:"type:varchar(500)"`
	RowCount    int                    `gorm:"not null;default:0"`
	Error       string                 `gorm:"column:error_message;type:text"`
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func (ExportJobModel) TableName() string {
	return "export_jobs"
}

func (m *ExportJobModel) ToDomain() *dataexchange.ExportJob {
	j := &dataexchange.ExportJob{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Entity:               m.Entity,
		Format:               m.Format,
		Filters:              map[string]string{},
		Status:               m.Status,
		ObjectKey:            m.ObjectKey,
		RowCount:             m.RowCount,
		Error:                m.Error,
		StartedAt:            m.StartedAt,
		CompletedAt:          m.CompletedAt,
	}
	fromJSON(m.Filters, &j.Filters)
	return j
}

func ExportJobModelFromDomain(j *dataexchange.ExportJob) *ExportJobModel {
	m := &ExportJobModel{
		Entity:      j.Entity,
		Format:      j.Format,
		Filters:     toJSON(j.Filters, "{}"),
		Status:      j.Status,
		ObjectKey:   j.ObjectKey,
		RowCount:    j.RowCount,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
	m.FromDomainCompanyAggregateRoot(j.CompanyAggregateRoot)
	return m
}

type ImportJobModel struct {
	CompanyAggregateModel
	Entity       dataexchange.Entity       `gorm:"type:varchar(20);not null"`
	FileName     string                    `gorm:"type:varchar(255);not null"`
	FileSize     int64                     `gorm:"not null;default:0"`
	ConflictMode dataexchange.ConflictMode `gorm:"type:varchar(10);not null;default:'skip'"`
	Status       dataexchange.JobStatus    `gorm:"type:varchar(20);not null;index"`
	TotalRows    int                       `gorm:"not null;default:0"`
	Imported     int                       `gorm:"not null;default:0"`
	Updated      int                       `gorm:"not null;default:0"`
	Skipped      int                       `gorm:"not null;default:0"`
	Errors       datatypes.JSON            `gorm:"type:jsonb;not null"`
	CompletedAt  *time.Time
}

func (ImportJobModel) TableName() string {
	return "import_jobs"
}

func (m *ImportJobModel) ToDomain() *dataexchange.ImportJob {
	j := &dataexchange.ImportJob{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Entity:               m.Entity,
		FileName:             m.FileName,
		FileSize:             m.FileSize,
		ConflictMode:         m.ConflictMode,
		Status:               m.Status,
		TotalRows:            m.TotalRows,
		Imported:             m.Imported,
		Updated:              m.Updated,
		Skipped:              m.Skipped,
		Errors:               []dataexchange.RowError{},
		CompletedAt:          m.CompletedAt,
	}
	fromJSON(m.Errors, &j.Errors)
	return j
}

func ImportJobModelFromDomain(j *dataexchange.ImportJob) *ImportJobModel {
	m := &ImportJobModel{
		Entity:       j.Entity,
		FileName:     j.FileName,
		FileSize:     j.FileSize,
		ConflictMode: j.ConflictMode,
		Status:       j.Status,
		TotalRows:    j.TotalRows,
		Imported:     j.Imported,
		Updated:      j.Updated,
		Skipped:      j.Skipped,
		Errors:       toJSON(j.Errors, "[]"),
		CompletedAt:  j.CompletedAt,
	}
	m.FromDomainCompanyAggregateRoot(j.CompanyAggregateRoot)
	return m
}

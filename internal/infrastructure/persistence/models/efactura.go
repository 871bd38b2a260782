package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/efactura"
	"github.com/google/uuid"
)

type EFacturaSubmissionModel struct {
	CompanyAggregateModel
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null"`
	Status        efactura.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	UploadIndex   string          `gorm:"type:varchar(50)"`
	DownloadID    string          `gorm:"type:varchar(50)"`
	XMLObjectKey  string          `gorm:"column:xml_object_key;type:varchar(500)"`
	ANAFStatus    string          `gorm:"column:anaf_status;type:varchar(50)"`
	ANAFMessage   string          `gorm:"column:anaf_message;type:text"`
	ErrorMessage  string          `gorm:"type:text"`
	AttemptCount  int             `gorm:"not null;default:0"`
	NextAttemptAt *time.Time      `gorm:"index"`
	SubmittedAt   *time.Time
	ValidatedAt   *time.Time
	LastSyncAt    *time.Time
}

func (EFacturaSubmissionModel) TableName() string {
	return "efactura_submissions"
}

func (m *EFacturaSubmissionModel) ToDomain() *efactura.Submission {
	return &efactura.Submission{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		InvoiceID:            m.InvoiceID,
		InvoiceNumber:        m.InvoiceNumber,
		Status:               m.Status,
		UploadIndex:          m.UploadIndex,
		DownloadID:           m.DownloadID,
		XMLObjectKey:         m.XMLObjectKey,
		ANAFStatus:           m.ANAFStatus,
		ANAFMessage:          m.ANAFMessage,
		ErrorMessage:         m.ErrorMessage,
		AttemptCount:         m.AttemptCount,
		NextAttemptAt:        m.NextAttemptAt,
		SubmittedAt:          m.SubmittedAt,
		ValidatedAt:          m.ValidatedAt,
		LastSyncAt:           m.LastSyncAt,
	}
}

func EFacturaSubmissionModelFromDomain(s *efactura.Submission) *EFacturaSubmissionModel {
	m := &EFacturaSubmissionModel{
		InvoiceID:     s.InvoiceID,
		InvoiceNumber: s.InvoiceNumber,
		Status:        s.Status,
		UploadIndex:   s.UploadIndex,
		DownloadID:    s.DownloadID,
		XMLObjectKey:  s.XMLObjectKey,
		ANAFStatus:    s.ANAFStatus,
		ANAFMessage:   s.ANAFMessage,
		ErrorMessage:  s.ErrorMessage,
		AttemptCount:  s.AttemptCount,
		NextAttemptAt: s.NextAttemptAt,
		SubmittedAt:   s.SubmittedAt,
		ValidatedAt:   s.ValidatedAt,
		LastSyncAt:    s.LastSyncAt,
	}
	m.FromDomainCompanyAggregateRoot(s.CompanyAggregateRoot)
	return m
}

package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/project"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProjectModel struct {
	CompanyAggregateModel
	Name                 string               `gorm:"type:varchar(200);not null"`
	Description          string               `gorm:"type:text"`
	Status               project.Status       `gorm:"type:varchar(20);not null;default:'planning'"`
	HealthStatus         project.HealthStatus `gorm:"type:varchar(20);not null;default:'on_track'"`
	Methodology          project.Methodology  `gorm:"type:varchar(20);not null;default:'agile'"`
	Priority             project.Priority     `gorm:"type:varchar(20);not null;default:'medium'"`
	ClientID             *uuid.UUID           `gorm:"type:uuid;index"`
	StartDate            *time.Time           `gorm:"type:date"`
	EndDate              *time.Time           `gorm:"type:date"`
	Budget               decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency             string               `gorm:"type:varchar(3);not null;default:'RON'"`
	CompletionPercentage int                  `gorm:"not null;default:0"`
	Tags                 datatypes.JSON       `gorm:"type:jsonb"`
	CustomFields         datatypes.JSON       `gorm:"type:jsonb"`
}

func (ProjectModel) TableName() string {
	return "projects"
}

func (m *ProjectModel) ToDomain() *project.Project {
	p := &project.Project{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Name:                 m.Name,
		Description:          m.Description,
		Status:               m.Status,
		HealthStatus:         m.HealthStatus,
		Methodology:          m.Methodology,
		Priority:             m.Priority,
		ClientID:             m.ClientID,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		Budget:               m.Budget,
		Currency:             valueobject.Currency(m.Currency),
		CompletionPercentage: m.CompletionPercentage,
		Tags:                 []string{},
		CustomFields:         map[string]any{},
	}
	fromJSON(m.Tags, &p.Tags)
	fromJSON(m.CustomFields, &p.CustomFields)
	return p
}

func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{
		Name:                 p.Name,
		Description:          p.Description,
		Status:               p.Status,
		HealthStatus:         p.HealthStatus,
		Methodology:          p.Methodology,
		Priority:             p.Priority,
		ClientID:             p.ClientID,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		Budget:               p.Budget,
		Currency:             string(p.Currency),
		CompletionPercentage: p.CompletionPercentage,
		Tags:                 toJSON(p.Tags, "[]"),
		CustomFields:         toJSON(p.CustomFields, "{}"),
	}
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	return m
}

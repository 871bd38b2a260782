// Package project tracks client and internal projects of a company.
package project

import (
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusArchived  Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled, StatusArchived:
		return true
	}
	return false
}

type HealthStatus string

const (
	HealthOnTrack  HealthStatus = "on_track"
	HealthAtRisk   HealthStatus = "at_risk"
	HealthOffTrack HealthStatus = "off_track"
)

func (h HealthStatus) IsValid() bool {
	switch h {
	case HealthOnTrack, HealthAtRisk, HealthOffTrack:
		return true
	}
	return false
}

type Methodology string

const (
	MethodologyAgile     Methodology = "agile"
	MethodologyScrum     Methodology = "scrum"
	MethodologyKanban    Methodology = "kanban"
	MethodologyWaterfall Methodology = "waterfall"
	MethodologyHybrid    Methodology = "hybrid"
)

func (m Methodology) IsValid() bool {
	switch m {
	case MethodologyAgile, MethodologyScrum, MethodologyKanban, MethodologyWaterfall, MethodologyHybrid:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Project is a unit of billable or internal work owned by a company.
type Project struct {
	shared.CompanyAggregateRoot
	Name                 string
	Description          string
	Status               Status
	HealthStatus         HealthStatus
	Methodology          Methodology
	Priority             Priority
	ClientID             *uuid.UUID
	StartDate            *time.Time
	EndDate              *time.Time
	Budget               decimal.Decimal
	Currency             valueobject.Currency
	CompletionPercentage int
	Tags                 []string
	CustomFields         map[string]any
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Name                 *string
	Description          *string
	Status               *Status
	HealthStatus         *HealthStatus
	Methodology          *Methodology
	Priority             *Priority
	ClientID             *uuid.UUID
	ClearClient          bool
	StartDate            *time.Time
	EndDate              *time.Time
	Budget               *decimal.Decimal
	Currency             *string
	CompletionPercentage *int
	Tags                 []string
	CustomFields         map[string]any
}

func NewProject(tenantID, companyID uuid.UUID, name string) (*Project, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	p := &Project{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Name:                 strings.TrimSpace(name),
		Status:               StatusPlanning,
		HealthStatus:         HealthOnTrack,
		Methodology:          MethodologyAgile,
		Priority:             PriorityMedium,
		Budget:               decimal.Zero,
		Currency:             valueobject.DefaultCurrency,
		Tags:                 []string{},
		CustomFields:         map[string]any{},
	}
	p.AddDomainEvent(NewProjectCreatedEvent(p))
	return p, nil
}

// Apply validates all changes first and mutates the project only when every one is acceptable.
func (p *Project) Apply(ch Changes) error {
	if p.Status == StatusArchived {
		return shared.NewDomainError("PROJECT_ARCHIVED", "Archived projects cannot be modified")
	}
	if err := p.validate(ch); err != nil {
		return err
	}
	oldStatus := p.Status

	if ch.Name != nil {
		p.Name = strings.TrimSpace(*ch.Name)
	}
	if ch.Description != nil {
		p.Description = *ch.Description
	}
	if ch.HealthStatus != nil {
		p.HealthStatus = *ch.HealthStatus
	}
	if ch.Methodology != nil {
		p.Methodology = *ch.Methodology
	}
	if ch.Priority != nil {
		p.Priority = *ch.Priority
	}
	if ch.ClearClient {
		p.ClientID = nil
	} else if ch.ClientID != nil {
		id := *ch.ClientID
		p.ClientID = &id
	}
	if ch.StartDate != nil {
		p.StartDate = ch.StartDate
	}
	if ch.EndDate != nil {
		p.EndDate = ch.EndDate
	}
	if ch.Budget != nil {
		p.Budget = *ch.Budget
	}
	if ch.Currency != nil {
		c, _ := valueobject.ParseCurrency(*ch.Currency)
		p.Currency = c
	}
	if ch.CompletionPercentage != nil {
		p.CompletionPercentage = *ch.CompletionPercentage
	}
	if ch.Tags != nil {
		p.Tags = normalizeTags(ch.Tags)
	}
	if ch.CustomFields != nil {
		p.CustomFields = ch.CustomFields
	}
	if ch.Status != nil {
		p.Status = *ch.Status
		if p.Status == StatusCompleted {
			p.CompletionPercentage = 100
		}
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProjectUpdatedEvent(p))
	if oldStatus != p.Status {
		p.AddDomainEvent(NewProjectStatusChangedEvent(p, oldStatus, p.Status))
	}
	return nil
}

// Archive is the soft delete of a project.
func (p *Project) Archive() error {
	if p.Status == StatusArchived {
		return shared.NewDomainError("PROJECT_ARCHIVED", "Project is already archived")
	}
	old := p.Status
	p.Status = StatusArchived
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProjectStatusChangedEvent(p, old, StatusArchived))
	return nil
}

func (p *Project) validate(ch Changes) error {
	if ch.Name != nil {
		if err := validateName(*ch.Name); err != nil {
			return err
		}
	}
	if ch.Status != nil && !ch.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown project status: "+string(*ch.Status))
	}
	if ch.HealthStatus != nil && !ch.HealthStatus.IsValid() {
		return shared.NewDomainError("INVALID_HEALTH_STATUS", "Unknown health status: "+string(*ch.HealthStatus))
	}
	if ch.Methodology != nil && !ch.Methodology.IsValid() {
		return shared.NewDomainError("INVALID_METHODOLOGY", "Unknown methodology: "+string(*ch.Methodology))
	}
	if ch.Priority != nil && !ch.Priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Unknown priority: "+string(*ch.Priority))
	}
	if ch.Budget != nil && ch.Budget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	if ch.Currency != nil {
		if _, err := valueobject.ParseCurrency(*ch.Currency); err != nil {
			return shared.NewDomainError("INVALID_CURRENCY", err.Error())
		}
	}
	if ch.CompletionPercentage != nil && (*ch.CompletionPercentage < 0 || *ch.CompletionPercentage > 100) {
		return shared.NewDomainError("INVALID_COMPLETION", "Completion percentage must be between 0 and 100")
	}

	start, end := p.StartDate, p.EndDate
	if ch.StartDate != nil {
		start = ch.StartDate
	}
	if ch.EndDate != nil {
		end = ch.EndDate
	}
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}
	return nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

package project

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeProject = "Project"

const (
	EventTypeProjectCreated       = "ProjectCreated"
	EventTypeProjectUpdated       = "ProjectUpdated"
	EventTypeProjectStatusChanged = "ProjectStatusChanged"
)

type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
}

func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, AggregateTypeProject, p.ID, p.TenantID),
		CompanyID:       p.CompanyID,
		ProjectID:       p.ID,
		Name:            p.Name,
	}
}

type ProjectUpdatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
}

func NewProjectUpdatedEvent(p *Project) *ProjectUpdatedEvent {
	return &ProjectUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectUpdated, AggregateTypeProject, p.ID, p.TenantID),
		CompanyID:       p.CompanyID,
		ProjectID:       p.ID,
		Name:            p.Name,
	}
}

type ProjectStatusChangedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	ProjectID uuid.UUID `json:"project_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

func NewProjectStatusChangedEvent(p *Project, oldStatus, newStatus Status) *ProjectStatusChangedEvent {
	return &ProjectStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectStatusChanged, AggregateTypeProject, p.ID, p.TenantID),
		CompanyID:       p.CompanyID,
		ProjectID:       p.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

package company

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeCompany = "Company"

const (
	EventTypeCompanyCreated       = "CompanyCreated"
	EventTypeCompanyUpdated       = "CompanyUpdated"
	EventTypeCompanyStatusChanged = "CompanyStatusChanged"
	EventTypeCompanyDeleted       = "CompanyDeleted"
)

type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	CUI       string    `json:"cui"`
}

func NewCompanyCreatedEvent(c *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyCreated, AggregateTypeCompany, c.ID, c.TenantID),
		CompanyID:       c.ID,
		Name:            c.Name,
		CUI:             c.CUI,
	}
}

type CompanyUpdatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
}

func NewCompanyUpdatedEvent(c *Company) *CompanyUpdatedEvent {
	return &CompanyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyUpdated, AggregateTypeCompany, c.ID, c.TenantID),
		CompanyID:       c.ID,
		Name:            c.Name,
	}
}

type CompanyStatusChangedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

func NewCompanyStatusChangedEvent(c *Company, oldStatus, newStatus Status) *CompanyStatusChangedEvent {
	return &CompanyStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyStatusChanged, AggregateTypeCompany, c.ID, c.TenantID),
		CompanyID:       c.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

type CompanyDeletedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	CUI       string    `json:"cui"`
}

func NewCompanyDeletedEvent(c *Company) *CompanyDeletedEvent {
	return &CompanyDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyDeleted, AggregateTypeCompany, c.ID, c.TenantID),
		CompanyID:       c.ID,
		CUI:             c.CUI,
	}
}

package client

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeClient = "Client"

const (
	EventTypeClientCreated = "ClientCreated"
	EventTypeClientUpdated = "ClientUpdated"
	EventTypeClientDeleted = "ClientDeleted"
)

type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	ClientID  uuid.UUID `json:"client_id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
}

func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID, c.TenantID),
		CompanyID:       c.CompanyID,
		ClientID:        c.ID,
		Name:            c.Name,
		Type:            c.Type,
	}
}

type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	ClientID  uuid.UUID `json:"client_id"`
	Name      string    `json:"name"`
}

func NewClientUpdatedEvent(c *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientUpdated, AggregateTypeClient, c.ID, c.TenantID),
		CompanyID:       c.CompanyID,
		ClientID:        c.ID,
		Name:            c.Name,
	}
}

type ClientDeletedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	ClientID  uuid.UUID `json:"client_id"`
}

func NewClientDeletedEvent(c *Client) *ClientDeletedEvent {
	return &ClientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeleted, AggregateTypeClient, c.ID, c.TenantID),
		CompanyID:       c.CompanyID,
		ClientID:        c.ID,
	}
}

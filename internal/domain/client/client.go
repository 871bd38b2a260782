// Package client models the customers a company invoices.
package client

import (
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

type Type string

const (
	TypeIndividual Type = "individual"
	TypeCompany    Type = "company"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Client is a buyer of a company: a legal person identified by CUI, or a private individual.
type Client struct {
	shared.CompanyAggregateRoot
	Name    string
	Type    Type
	CUI     string
	RegCom  string
	Email   string
	Phone   string
	Address string
	City    string
	County  string
	Country string
	Notes   string
	Status  Status
}

// Contact groups the optional contact fields of a client.
type Contact struct {
	RegCom  string
	Email   string
	Phone   string
	Address string
	City    string
	County  string
	Country string
	Notes   string
}

func NewClient(tenantID, companyID uuid.UUID, name string, clientType Type, cui string) (*Client, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateType(clientType); err != nil {
		return nil, err
	}
	normalized, err := normalizeCUI(clientType, cui)
	if err != nil {
		return nil, err
	}

	c := &Client{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Name:                 strings.TrimSpace(name),
		Type:                 clientType,
		CUI:                  normalized,
		Country:              "RO",
		Status:               StatusActive,
	}
	c.AddDomainEvent(NewClientCreatedEvent(c))
	return c, nil
}

func (c *Client) Update(name string, clientType Type, cui string, contact Contact) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateType(clientType); err != nil {
		return err
	}
	normalized, err := normalizeCUI(clientType, cui)
	if err != nil {
		return err
	}
	if contact.Country == "" {
		contact.Country = c.Country
	}

	c.Name = strings.TrimSpace(name)
	c.Type = clientType
	c.CUI = normalized
	c.RegCom = strings.ToUpper(strings.TrimSpace(contact.RegCom))
	c.Email = contact.Email
	c.Phone = contact.Phone
	c.Address = contact.Address
	c.City = contact.City
	c.County = contact.County
	c.Country = strings.ToUpper(contact.Country)
	c.Notes = contact.Notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c))
	return nil
}

func (c *Client) Activate() error {
	if c.Status == StatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Client is already active")
	}
	c.Status = StatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func (c *Client) Deactivate() error {
	if c.Status == StatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Client is already inactive")
	}
	c.Status = StatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsLegalEntity reports whether the client is invoiced by CUI (B2B e-Factura).
func (c *Client) IsLegalEntity() bool {
	return c.Type == TypeCompany && c.CUI != ""
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateType(t Type) error {
	switch t {
	case TypeIndividual, TypeCompany:
		return nil
	}
	return shared.NewDomainError("INVALID_TYPE", "Client type must be individual or company")
}

func normalizeCUI(t Type, cui string) (string, error) {
	cui = strings.TrimSpace(cui)
	if cui == "" || t != TypeCompany {
		return valueobject.NormalizeCUI(cui), nil
	}
	if err := valueobject.ValidateCUI(cui); err != nil {
		return "", shared.NewDomainError("INVALID_CUI", "CUI is not a valid Romanian fiscal code")
	}
	return valueobject.NormalizeCUI(cui), nil
}

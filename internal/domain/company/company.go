// Package company holds the legal entities a tenant keeps books for.
package company

import (
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Company is a Romanian legal entity (SRL, PFA, SA...) registered under a tenant.
type Company struct {
	shared.TenantAggregateRoot
	Name            string
	CUI             string
	RegCom          string
	Address         string
	City            string
	County          string
	Country         string
	VATPayer        bool
	IBAN            string
	BankName        string
	Email           string
	Phone           string
	DefaultCurrency valueobject.Currency
	Status          Status
}

// Details groups the mutable descriptive fields of a company.
type Details struct {
	RegCom   string
	Address  string
	City     string
	County   string
	Country  string
	VATPayer bool
	IBAN     string
	BankName string
	Email    string
	Phone    string
}

func NewCompany(tenantID uuid.UUID, name, cui string) (*Company, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	normalized, err := normalizeCUI(cui)
	if err != nil {
		return nil, err
	}

	c := &Company{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		CUI:                 normalized,
		Country:             "RO",
		DefaultCurrency:     valueobject.DefaultCurrency,
		Status:              StatusActive,
	}
	c.AddDomainEvent(NewCompanyCreatedEvent(c))
	return c, nil
}

func (c *Company) Update(name string, details Details) error {
	if err := validateName(name); err != nil {
		return err
	}
	if details.Country == "" {
		details.Country = c.Country
	}

	c.Name = strings.TrimSpace(name)
	c.RegCom = strings.ToUpper(strings.TrimSpace(details.RegCom))
	c.Address = details.Address
	c.City = details.City
	c.County = details.County
	c.Country = strings.ToUpper(details.Country)
	c.VATPayer = details.VATPayer
	c.IBAN = strings.ToUpper(strings.ReplaceAll(details.IBAN, " ", ""))
	c.BankName = details.BankName
	c.Email = details.Email
	c.Phone = details.Phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyUpdatedEvent(c))
	return nil
}

func (c *Company) SetDefaultCurrency(code string) error {
	currency, err := valueobject.ParseCurrency(code)
	if err != nil {
		return shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	c.DefaultCurrency = currency
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func (c *Company) Activate() error {
	if c.Status == StatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Company is already active")
	}
	c.Status = StatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCompanyStatusChangedEvent(c, StatusInactive, StatusActive))
	return nil
}

func (c *Company) Deactivate() error {
	if c.Status == StatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Company is already inactive")
	}
	c.Status = StatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCompanyStatusChangedEvent(c, StatusActive, StatusInactive))
	return nil
}

func (c *Company) IsActive() bool {
	return c.Status == StatusActive
}

// VATCode is the CUI as it appears on invoices: prefixed with RO for VAT payers.
func (c *Company) VATCode() string {
	if c.VATPayer {
		return "RO" + c.CUI
	}
	return c.CUI
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	return nil
}

func normalizeCUI(cui string) (string, error) {
	if err := valueobject.ValidateCUI(cui); err != nil {
		return "", shared.NewDomainError("INVALID_CUI", "CUI is not a valid Romanian fiscal code")
	}
	return valueobject.NormalizeCUI(cui), nil
}

package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the consistency boundary persisted by a repository.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds an optimistic-lock version and pending events to BaseEntity.
// Version moves with every mutation; the stored version is the one the persisted row
// carries, so a locked save matches on it however many mutations happened in between.
type BaseAggregateRoot struct {
	BaseEntity
	Version       int
	storedVersion int
	domainEvents  []DomainEvent
}

// RestoreAggregateRoot rebuilds the root of an aggregate read back at version.
func RestoreAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:    entity,
		Version:       version,
		storedVersion: version,
	}
}

func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// StoredVersion is the version of the persisted row; zero until the aggregate is saved.
func (a *BaseAggregateRoot) StoredVersion() int {
	return a.storedVersion
}

// MarkStored records that the current version has been written.
func (a *BaseAggregateRoot) MarkStored() {
	a.storedVersion = a.Version
}

// HasChanges reports whether the aggregate was mutated since it was loaded or saved.
func (a *BaseAggregateRoot) HasChanges() bool {
	return a.Version != a.storedVersion
}

// Rebase points the next locked save at a row re-read at version, keeping the
// in-memory state. The written version still moves past the stored one.
func (a *BaseAggregateRoot) Rebase(version int) {
	a.storedVersion = version
	if a.Version <= version {
		a.Version = version + 1
	}
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot starts a new aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// TenantAggregateRoot scopes an aggregate to the SaaS account (tenant) that owns it.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}

func (t *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	t.CreatedBy = &userID
}

func (t *TenantAggregateRoot) GetCreatedBy() *uuid.UUID {
	return t.CreatedBy
}

// CompanyAggregateRoot scopes an aggregate to one company of a tenant.
// Clients, projects, invoices and the other bookkeeping records live here.
type CompanyAggregateRoot struct {
	TenantAggregateRoot
	CompanyID uuid.UUID
}

func NewCompanyAggregateRoot(tenantID, companyID uuid.UUID) CompanyAggregateRoot {
	return CompanyAggregateRoot{
		TenantAggregateRoot: NewTenantAggregateRoot(tenantID),
		CompanyID:           companyID,
	}
}

// BelongsTo reports whether the aggregate is owned by the given tenant and company.
func (c *CompanyAggregateRoot) BelongsTo(tenantID, companyID uuid.UUID) bool {
	return c.TenantID == tenantID && c.CompanyID == companyID
}

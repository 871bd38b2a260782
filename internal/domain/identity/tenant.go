// Package identity holds tenants (accounts), their users and role permissions.
package identity

import (
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
)

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is one SaaS account. Every other record carries its ID.
type Tenant struct {
	shared.BaseAggregateRoot
	Name   string
	Status TenantStatus
}

func NewTenant(name string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Account name is required and cannot exceed 200 characters")
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Status:            TenantStatusActive,
	}, nil
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

func (t *Tenant) Suspend() {
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

package identity

import (
	"context"

	"github.com/google/uuid"
)

type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

type UserRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	// FindByLogin matches username or email across tenants; both are globally unique.
	FindByLogin(ctx context.Context, login string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
}

// Registration creates an account and its owner in one transaction.
type Registration interface {
	Register(ctx context.Context, tenant *Tenant, owner *User) error
}

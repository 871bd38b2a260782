package client

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository persists clients of a company.
type ClientRepository interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Client, error)

	// FindByCUI is used by imports to detect existing clients.
	FindByCUI(ctx context.Context, tenantID, companyID uuid.UUID, cui string) (*Client, error)

	// FindAll supports Search (name, cui, email) and the "type" and "status" filters.
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]Client, error)

	Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error)

	Save(ctx context.Context, client *Client) error

	SaveWithLock(ctx context.Context, client *Client) error

	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}

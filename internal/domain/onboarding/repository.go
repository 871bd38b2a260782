package onboarding

import (
	"context"

	"github.com/google/uuid"
)

type ProgressRepository interface {
	// FindByUser returns shared.ErrNotFound when the user never opened the wizard.
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*Progress, error)
	Save(ctx context.Context, progress *Progress) error
	SaveWithLock(ctx context.Context, progress *Progress) error
}

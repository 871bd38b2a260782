package onboarding

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypeOnboarding      = "Onboarding"
	EventTypeOnboardingCompleted = "OnboardingCompleted"
)

type OnboardingCompletedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

func NewOnboardingCompletedEvent(p *Progress) *OnboardingCompletedEvent {
	return &OnboardingCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOnboardingCompleted, AggregateTypeOnboarding, p.ID, p.TenantID),
		UserID:          p.UserID,
	}
}

package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/onboarding"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OnboardingProgressModel struct {
	TenantAggregateModel
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	CurrentStep int            `gorm:"not null;default:0"`
	Steps       datatypes.JSON `gorm:"type:jsonb;not null"`
	CompletedAt *time.Time
}

func (OnboardingProgressModel) TableName() string {
	return "onboarding_progress"
}

func (m *OnboardingProgressModel) ToDomain() *onboarding.Progress {
	p := &onboarding.Progress{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		UserID:              m.UserID,
		CurrentStep:         m.CurrentStep,
		Steps:               []onboarding.Step{},
		CompletedAt:         m.CompletedAt,
	}
	fromJSON(m.Steps, &p.Steps)
	return p
}

func OnboardingProgressModelFromDomain(p *onboarding.Progress) *OnboardingProgressModel {
	m := &OnboardingProgressModel{
		UserID:      p.UserID,
		CurrentStep: p.CurrentStep,
		Steps:       toJSON(p.Steps, "[]"),
		CompletedAt: p.CompletedAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

package onboarding

import (
	"testing"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgress(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())
	require.Len(t, p.Steps, 5)
	assert.Equal(t, 0, p.CurrentStep)
	assert.Equal(t, StepSettings, p.Steps[4].ID)
	assert.Equal(t, 0, p.PercentComplete())
}

func TestProgress_SaveStepDoesNotAdvance(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())
	require.NoError(t, p.SaveStep(StepCompany, map[string]any{"name": "Acme SRL"}))
	require.NoError(t, p.SaveStep(StepCompany, map[string]any{"cui": "18547290"}))
	assert.Equal(t, 0, p.CurrentStep)
	assert.False(t, p.Steps[0].Completed)
	assert.Equal(t, "Acme SRL", p.Steps[0].Data["name"])
	assert.Equal(t, "18547290", p.Steps[0].Data["cui"])
}

func TestProgress_StepRules(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())

	assert.Equal(t, "STEP_NOT_SKIPPABLE", shared.ErrorCode(p.SkipStep(StepCompany)))
	assert.Equal(t, "STEP_LOCKED", shared.ErrorCode(p.GoToStep(StepProfile)))
	assert.Equal(t, "STEP_LOCKED", shared.ErrorCode(p.CompleteStep(StepProfile, nil)))
	assert.Equal(t, "INVALID_STEP", shared.ErrorCode(p.GoToStep("payments")))

	require.NoError(t, p.CompleteStep(StepCompany, nil))
	assert.Equal(t, 1, p.CurrentStep)
	require.NoError(t, p.CompleteStep(StepProfile, nil))
	assert.Equal(t, 2, p.CurrentStep)
	require.NoError(t, p.SkipStep(StepBanking))
	require.NoError(t, p.SkipStep(StepDocuments))
	assert.Equal(t, 4, p.CurrentStep)

	require.NoError(t, p.GoToStep(StepCompany))
	assert.Equal(t, 0, p.CurrentStep)
}

func TestProgress_Finish(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())
	require.NoError(t, p.CompleteStep(StepCompany, nil))
	require.NoError(t, p.CompleteStep(StepProfile, nil))

	err := p.Finish()
	assert.Equal(t, "INCOMPLETE_STEPS", shared.ErrorCode(err))
	assert.Contains(t, err.Error(), "settings")

	require.NoError(t, p.CompleteStep(StepSettings, map[string]any{"language": "ro"}))
	require.NoError(t, p.Finish())
	assert.True(t, p.IsFinished())
	first := *p.CompletedAt
	require.NoError(t, p.Finish())
	assert.Equal(t, first, *p.CompletedAt)
	assert.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, 60, p.PercentComplete())

	p.Reset()
	assert.False(t, p.IsFinished())
	assert.Equal(t, 0, p.PercentComplete())
}

package project

import (
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	p, err := NewProject(uuid.New(), uuid.New(), "Migrare ERP")
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func ptr[T any](v T) *T { return &v }

func TestNewProject_Defaults(t *testing.T) {
	p, err := NewProject(uuid.New(), uuid.New(), "  Migrare ERP ")
	require.NoError(t, err)

	assert.Equal(t, "Migrare ERP", p.Name)
	assert.Equal(t, StatusPlanning, p.Status)
	assert.Equal(t, HealthOnTrack, p.HealthStatus)
	assert.Equal(t, MethodologyAgile, p.Methodology)
	assert.Equal(t, PriorityMedium, p.Priority)
	assert.True(t, p.Budget.IsZero())
	assert.Empty(t, p.Tags)
	require.Len(t, p.GetDomainEvents(), 1)
}

func TestNewProject_RequiresName(t *testing.T) {
	_, err := NewProject(uuid.New(), uuid.New(), "")
	assert.Equal(t, "INVALID_NAME", shared.ErrorCode(err))
}

func TestProject_Apply_PartialUpdate(t *testing.T) {
	p := newTestProject(t)
	p.Description = "keep me"

	err := p.Apply(Changes{
		Priority: ptr(PriorityHigh),
		Budget:   ptr(decimal.NewFromInt(15000)),
		Tags:     []string{"ERP", " erp ", "migrare", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "Migrare ERP", p.Name)
	assert.Equal(t, "keep me", p.Description)
	assert.Equal(t, PriorityHigh, p.Priority)
	assert.Equal(t, "15000", p.Budget.String())
	assert.Equal(t, []string{"erp", "migrare"}, p.Tags)
	assert.Equal(t, 2, p.Version)
	assert.Len(t, p.GetDomainEvents(), 1)
}

func TestProject_Apply_CompletedSetsFullCompletion(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.Apply(Changes{Status: ptr(StatusCompleted)}))
	assert.Equal(t, 100, p.CompletionPercentage)
	assert.Len(t, p.GetDomainEvents(), 2)
}

func TestProject_Apply_Validation(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ch   Changes
		code string
	}{
		{"unknown status", Changes{Status: ptr(Status("done"))}, "INVALID_STATUS"},
		{"unknown health", Changes{HealthStatus: ptr(HealthStatus("red"))}, "INVALID_HEALTH_STATUS"},
		{"unknown methodology", Changes{Methodology: ptr(Methodology("xp"))}, "INVALID_METHODOLOGY"},
		{"unknown priority", Changes{Priority: ptr(Priority("urgent"))}, "INVALID_PRIORITY"},
		{"negative budget", Changes{Budget: ptr(decimal.NewFromInt(-1))}, "INVALID_BUDGET"},
		{"completion over 100", Changes{CompletionPercentage: ptr(101)}, "INVALID_COMPLETION"},
		{"end before start", Changes{StartDate: &start, EndDate: &end}, "INVALID_DATE_RANGE"},
		{"bad currency", Changes{Currency: ptr("BTC")}, "INVALID_CURRENCY"},
		{"blank name", Changes{Name: ptr(" ")}, "INVALID_NAME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProject(t)
			err := p.Apply(tt.ch)
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.ErrorCode(err))
			assert.Equal(t, 1, p.Version, "failed update must not mutate")
		})
	}
}

func TestProject_Archive(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.Archive())
	assert.Equal(t, StatusArchived, p.Status)

	assert.Equal(t, "PROJECT_ARCHIVED", shared.ErrorCode(p.Archive()))
	assert.Equal(t, "PROJECT_ARCHIVED", shared.ErrorCode(p.Apply(Changes{Name: ptr("x")})))
}

func TestProject_Apply_ClientAssignment(t *testing.T) {
	p := newTestProject(t)
	clientID := uuid.New()

	require.NoError(t, p.Apply(Changes{ClientID: &clientID}))
	require.NotNil(t, p.ClientID)
	assert.Equal(t, clientID, *p.ClientID)

	require.NoError(t, p.Apply(Changes{ClearClient: true}))
	assert.Nil(t, p.ClientID)
}

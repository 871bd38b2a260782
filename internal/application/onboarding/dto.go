package onboarding

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/onboarding"
	"github.com/google/uuid"
)

// StepRequest carries the form values of one wizard step.
type StepRequest struct {
	Data map[string]any `json:"data"`
}

type StepResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Skippable   bool           `json:"skippable"`
	Completed   bool           `json:"completed"`
	Skipped     bool           `json:"skipped"`
	Data        map[string]any `json:"data"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

type ProgressResponse struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	CurrentStep     int            `json:"current_step"`
	CurrentStepID   string         `json:"current_step_id"`
	PercentComplete int            `json:"percent_complete"`
	Finished        bool           `json:"finished"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	Steps           []StepResponse `json:"steps"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func ToProgressResponse(p *onboarding.Progress) ProgressResponse {
	defs := onboarding.Definitions()
	steps := make([]StepResponse, 0, len(p.Steps))
	for i, s := range p.Steps {
		data := s.Data
		if data == nil {
			data = map[string]any{}
		}
		step := StepResponse{
			ID:          string(s.ID),
			Completed:   s.Completed,
			Skipped:     s.Skipped,
			Data:        data,
			CompletedAt: s.CompletedAt,
		}
		if i < len(defs) {
			step.Title = defs[i].Title
			step.Skippable = defs[i].Skippable
		}
		steps = append(steps, step)
	}

	resp := ProgressResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		CurrentStep:     p.CurrentStep,
		PercentComplete: p.PercentComplete(),
		Finished:        p.IsFinished(),
		CompletedAt:     p.CompletedAt,
		Steps:           steps,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.CurrentStep >= 0 && p.CurrentStep < len(defs) {
		resp.CurrentStepID = string(defs[p.CurrentStep].ID)
	}
	return resp
}

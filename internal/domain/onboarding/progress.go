// Package onboarding drives the first-run setup wizard of a new user.
package onboarding

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type StepID string

const (
	StepCompany   StepID = "company"
	StepProfile   StepID = "profile"
	StepBanking   StepID = "banking"
	StepDocuments StepID = "documents"
	StepSettings  StepID = "settings"
)

// StepDefinition is the static description of a wizard step.
type StepDefinition struct {
	ID        StepID
	Title     string
	Skippable bool
}

var definitions = []StepDefinition{
	{ID: StepCompany, Title: "Company details"},
	{ID: StepProfile, Title: "Your profile"},
	{ID: StepBanking, Title: "Bank accounts", Skippable: true},
	{ID: StepDocuments, Title: "Document templates", Skippable: true},
	{ID: StepSettings, Title: "Preferences"},
}

// Definitions returns the wizard steps in order.
func Definitions() []StepDefinition {
	out := make([]StepDefinition, len(definitions))
	copy(out, definitions)
	return out
}

// StepIndex returns the position of id, or -1.
func StepIndex(id StepID) int {
	for i, d := range definitions {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Step is the saved state of one wizard step.
type Step struct {
	ID          StepID         `json:"id"`
	Completed   bool           `json:"completed"`
	Skipped     bool           `json:"skipped"`
	Data        map[string]any `json:"data,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// Progress is the wizard state of one user.
type Progress struct {
	shared.TenantAggregateRoot
	UserID      uuid.UUID
	CurrentStep int
	Steps       []Step
	CompletedAt *time.Time
}

func NewProgress(tenantID, userID uuid.UUID) *Progress {
	p := &Progress{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
	}
	p.resetSteps()
	return p
}

func (p *Progress) IsFinished() bool {
	return p.CompletedAt != nil
}

// Step returns the saved state for id.
func (p *Progress) Step(id StepID) (*Step, error) {
	idx := StepIndex(id)
	if idx < 0 || idx >= len(p.Steps) {
		return nil, shared.NewDomainError("INVALID_STEP", "Unknown onboarding step: "+string(id))
	}
	return &p.Steps[idx], nil
}

// SaveStep checkpoints data without advancing.
func (p *Progress) SaveStep(id StepID, data map[string]any) error {
	step, err := p.Step(id)
	if err != nil {
		return err
	}
	step.Data = mergeData(step.Data, data)
	p.touch()
	return nil
}

// CompleteStep stores data, marks the step completed and moves to the next open step.
func (p *Progress) CompleteStep(id StepID, data map[string]any) error {
	step, err := p.Step(id)
	if err != nil {
		return err
	}
	if idx := StepIndex(id); idx > p.firstIncompleteRequired() {
		return shared.NewDomainError("STEP_LOCKED", "Complete the previous required steps first")
	}
	now := time.Now()
	step.Data = mergeData(step.Data, data)
	step.Completed = true
	step.Skipped = false
	step.CompletedAt = &now
	p.advanceFrom(StepIndex(id))
	p.touch()
	return nil
}

// SkipStep is only allowed for optional steps.
func (p *Progress) SkipStep(id StepID) error {
	idx := StepIndex(id)
	if idx < 0 {
		return shared.NewDomainError("INVALID_STEP", "Unknown onboarding step: "+string(id))
	}
	if !definitions[idx].Skippable {
		return shared.NewDomainError("STEP_NOT_SKIPPABLE", "Step "+string(id)+" is required")
	}
	if idx > p.firstIncompleteRequired() {
		return shared.NewDomainError("STEP_LOCKED", "Complete the previous required steps first")
	}
	step := &p.Steps[idx]
	step.Skipped = true
	step.Completed = false
	p.advanceFrom(idx)
	p.touch()
	return nil
}

// GoToStep moves the cursor, but never beyond the first incomplete required step.
func (p *Progress) GoToStep(id StepID) error {
	idx := StepIndex(id)
	if idx < 0 {
		return shared.NewDomainError("INVALID_STEP", "Unknown onboarding step: "+string(id))
	}
	if idx > p.firstIncompleteRequired() {
		return shared.NewDomainError("STEP_LOCKED", "Complete the previous required steps first")
	}
	p.CurrentStep = idx
	p.touch()
	return nil
}

// Finish closes the wizard. Finishing twice is a no-op.
func (p *Progress) Finish() error {
	if p.IsFinished() {
		return nil
	}
	var missing []string
	for i, d := range definitions {
		if !d.Skippable && !p.Steps[i].Completed {
			missing = append(missing, string(d.ID))
		}
	}
	if len(missing) > 0 {
		return shared.NewDomainError("INCOMPLETE_STEPS", "Required steps are not completed: "+joinIDs(missing))
	}
	now := time.Now()
	p.CompletedAt = &now
	p.CurrentStep = len(definitions) - 1
	p.touch()
	p.AddDomainEvent(NewOnboardingCompletedEvent(p))
	return nil
}

func (p *Progress) Reset() {
	p.resetSteps()
	p.CompletedAt = nil
	p.touch()
}

// PercentComplete counts completed and skipped steps.
func (p *Progress) PercentComplete() int {
	done := 0
	for _, s := range p.Steps {
		if s.Completed || s.Skipped {
			done++
		}
	}
	return done * 100 / len(definitions)
}

func (p *Progress) resetSteps() {
	p.CurrentStep = 0
	p.Steps = make([]Step, len(definitions))
	for i, d := range definitions {
		p.Steps[i] = Step{ID: d.ID}
	}
}

// firstIncompleteRequired is the furthest index the user may reach.
func (p *Progress) firstIncompleteRequired() int {
	for i, d := range definitions {
		if !d.Skippable && !p.Steps[i].Completed {
			return i
		}
	}
	return len(definitions) - 1
}

func (p *Progress) advanceFrom(idx int) {
	for i := idx + 1; i < len(p.Steps); i++ {
		if !p.Steps[i].Completed && !p.Steps[i].Skipped {
			p.CurrentStep = i
			return
		}
	}
	if idx+1 < len(p.Steps) {
		p.CurrentStep = idx + 1
	} else {
		p.CurrentStep = idx
	}
}

func (p *Progress) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func mergeData(existing, incoming map[string]any) map[string]any {
	if existing == nil {
		existing = make(map[string]any, len(incoming))
	}
	for k, v := range incoming {
		existing[k] = v
	}
	return existing
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}

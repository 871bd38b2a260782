package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appcompany "github.com/documentiulia/backend/internal/application/company"
	"github.com/documentiulia/backend/internal/domain/onboarding"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyProvisioner creates the tenant's first company from the company step.
type CompanyProvisioner interface {
	List(ctx context.Context, tenantID uuid.UUID, filter appcompany.CompanyListFilter) ([]appcompany.CompanyResponse, int64, error)
	Create(ctx context.Context, tenantID uuid.UUID, req appcompany.CreateCompanyRequest) (*appcompany.CompanyResponse, error)
}

type OnboardingService struct {
	progress       onboarding.ProgressRepository
	companies      CompanyProvisioner
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewOnboardingService(progress onboarding.ProgressRepository, companies CompanyProvisioner, logger *zap.Logger) *OnboardingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingService{
		progress:  progress,
		companies: companies,
		logger:    logger.Named("onboarding"),
	}
}

func (s *OnboardingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Get returns the wizard state, starting a fresh one on first access.
func (s *OnboardingService) Get(ctx context.Context, tenantID, userID uuid.UUID) (*ProgressResponse, error) {
	p, err := s.load(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	response := ToProgressResponse(p)
	return &response, nil
}

func (s *OnboardingService) SaveStep(ctx context.Context, tenantID, userID uuid.UUID, step string, req StepRequest) (*ProgressResponse, error) {
	return s.apply(ctx, tenantID, userID, func(p *onboarding.Progress) error {
		return p.SaveStep(onboarding.StepID(step), req.Data)
	})
}

// CompleteStep marks the step done. Completing the company step with a name
// and CUI provisions the first company when the tenant has none yet.
func (s *OnboardingService) CompleteStep(ctx context.Context, tenantID, userID uuid.UUID, step string, req StepRequest) (*ProgressResponse, error) {
	data := req.Data
	id := onboarding.StepID(step)
	return s.apply(ctx, tenantID, userID, func(p *onboarding.Progress) error {
		if id == onboarding.StepCompany {
			if _, err := p.Step(id); err != nil {
				return err
			}
			companyID, err := s.provisionCompany(ctx, tenantID, userID, data)
			if err != nil {
				return err
			}
			if companyID != uuid.Nil {
				data = withValue(data, "company_id", companyID.String())
			}
		}
		return p.CompleteStep(id, data)
	})
}

func (s *OnboardingService) SkipStep(ctx context.Context, tenantID, userID uuid.UUID, step string) (*ProgressResponse, error) {
	return s.apply(ctx, tenantID, userID, func(p *onboarding.Progress) error {
		return p.SkipStep(onboarding.StepID(step))
	})
}

func (s *OnboardingService) GoToStep(ctx context.Context, tenantID, userID uuid.UUID, step string) (*ProgressResponse, error) {
	return s.apply(ctx, tenantID, userID, func(p *onboarding.Progress) error {
		return p.GoToStep(onboarding.StepID(step))
	})
}

func (s *OnboardingService) Finish(ctx context.Context, tenantID, userID uuid.UUID) (*ProgressResponse, error) {
	return s.apply(ctx, tenantID, userID, func(p *onboarding.Progress) error {
		return p.Finish()
	})
}

func (s *OnboardingService) Reset(ctx context.Context, tenantID, userID uuid.UUID) (*ProgressResponse, error) {
	return s.apply(ctx, tenantID, userID, func(p *onboarding.Progress) error {
		p.Reset()
		return nil
	})
}

func (s *OnboardingService) load(ctx context.Context, tenantID, userID uuid.UUID) (*onboarding.Progress, error) {
	p, err := s.progress.FindByUser(ctx, tenantID, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	p = onboarding.NewProgress(tenantID, userID)
	p.SetCreatedBy(userID)
	if err := s.progress.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Debug("onboarding started", zap.String("user_id", userID.String()))
	return p, nil
}

func (s *OnboardingService) apply(ctx context.Context, tenantID, userID uuid.UUID, step func(*onboarding.Progress) error) (*ProgressResponse, error) {
	p, err := s.load(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := step(p); err != nil {
		return nil, err
	}
	// Repeated finishes and other no-op steps leave the row alone.
	if p.HasChanges() {
		if err := s.progress.SaveWithLock(ctx, p); err != nil {
			return nil, err
		}
	}
	s.publishDomainEvents(ctx, p)

	response := ToProgressResponse(p)
	return &response, nil
}

func (s *OnboardingService) provisionCompany(ctx context.Context, tenantID, userID uuid.UUID, data map[string]any) (uuid.UUID, error) {
	name, cui := stringValue(data, "name"), stringValue(data, "cui")
	if name == "" || cui == "" {
		return uuid.Nil, nil
	}

	_, total, err := s.companies.List(ctx, tenantID, appcompany.CompanyListFilter{Page: 1, PageSize: 1})
	if err != nil {
		return uuid.Nil, fmt.Errorf("count companies: %w", err)
	}
	if total > 0 {
		return uuid.Nil, nil
	}

	created, err := s.companies.Create(ctx, tenantID, appcompany.CreateCompanyRequest{
		Name:            name,
		CUI:             cui,
		RegCom:          stringValue(data, "reg_com"),
		Address:         stringValue(data, "address"),
		City:            stringValue(data, "city"),
		County:          stringValue(data, "county"),
		Country:         stringValue(data, "country"),
		VATPayer:        boolValue(data, "vat_payer"),
		IBAN:            stringValue(data, "iban"),
		BankName:        stringValue(data, "bank_name"),
		Email:           stringValue(data, "email"),
		Phone:           stringValue(data, "phone"),
		DefaultCurrency: stringValue(data, "default_currency"),
		CreatedBy:       &userID,
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.Info("company created from onboarding",
		zap.String("tenant_id", tenantID.String()),
		zap.String("company_id", created.ID.String()))
	return created.ID, nil
}

func (s *OnboardingService) publishDomainEvents(ctx context.Context, p *onboarding.Progress) {
	if s.eventPublisher == nil {
		p.ClearDomainEvents()
		return
	}
	events := p.GetDomainEvents()
	if len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	p.ClearDomainEvents()
}

func stringValue(data map[string]any, key string) string {
	v, ok := data[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// boolValue accepts JSON booleans and the "true"/"da" strings some forms send.
func boolValue(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		v = strings.ToLower(strings.TrimSpace(v))
		return v == "true" || v == "1" || v == "da"
	}
	return false
}

func withValue(data map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out[key] = value
	return out
}

package hr

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/domain/hr"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PayrollService runs monthly payroll over the active employees of a company
type PayrollService struct {
	runs           hr.PayrollRepository
	employees      hr.EmployeeRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewPayrollService(runs hr.PayrollRepository, employees hr.EmployeeRepository, logger *zap.Logger) *PayrollService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollService{runs: runs, employees: employees, logger: logger.Named("payroll")}
}

func (s *PayrollService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens the run of a period and calculates it right away.
func (s *PayrollService) Create(ctx context.Context, tenantID, companyID uuid.UUID, req CreatePayrollRequest) (*PayrollResponse, error) {
	if err := hr.ValidatePeriod(req.Period); err != nil {
		return nil, err
	}
	existing, err := s.runs.FindByPeriod(ctx, tenantID, companyID, req.Period)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "A payroll run for "+req.Period+" already exists")
	}

	run, err := hr.NewPayrollRun(tenantID, companyID, req.Period)
	if err != nil {
		return nil, err
	}
	if err := s.calculate(ctx, run); err != nil {
		return nil, err
	}
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, err
	}
	s.logger.Info("payroll calculated",
		zap.String("company_id", companyID.String()),
		zap.String("period", run.Period),
		zap.Int("entries", len(run.Entries)))
	s.publishDomainEvents(ctx, run)

	response := ToPayrollResponse(run)
	return &response, nil
}

func (s *PayrollService) Recalculate(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PayrollResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(run *hr.PayrollRun) error { return s.calculate(ctx, run) })
}

func (s *PayrollService) Approve(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PayrollResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(run *hr.PayrollRun) error { return run.Approve() })
}

func (s *PayrollService) MarkPaid(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PayrollResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(run *hr.PayrollRun) error { return run.MarkPaid() })
}

func (s *PayrollService) GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PayrollResponse, error) {
	run, err := s.runs.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToPayrollResponse(run)
	return &response, nil
}

func (s *PayrollService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter PayrollListFilter) ([]PayrollResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "period"
	domainFilter.OrderDir = "desc"
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	runs, err := s.runs.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.runs.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PayrollResponse, len(runs))
	for i := range runs {
		out[i] = ToPayrollResponse(&runs[i])
	}
	return out, total, nil
}

func (s *PayrollService) calculate(ctx context.Context, run *hr.PayrollRun) error {
	employees, err := s.employees.FindActive(ctx, run.TenantID, run.CompanyID)
	if err != nil {
		return err
	}
	return run.Calculate(employees)
}

func (s *PayrollService) apply(ctx context.Context, tenantID, companyID, id uuid.UUID, step func(*hr.PayrollRun) error) (*PayrollResponse, error) {
	run, err := s.runs.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := step(run); err != nil {
		return nil, err
	}
	if err := s.runs.SaveWithLock(ctx, run); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, run)
	response := ToPayrollResponse(run)
	return &response, nil
}

func (s *PayrollService) publishDomainEvents(ctx context.Context, run *hr.PayrollRun) {
	if s.eventPublisher == nil {
		run.ClearDomainEvents()
		return
	}
	if events := run.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		run.ClearDomainEvents()
	}
}

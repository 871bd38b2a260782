// Package hr implements employee records and payroll runs.
package hr

import (
	"context"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/hr"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type EmployeeService struct {
	employees      hr.EmployeeRepository
	eventPublisher shared.EventPublisher
}

func NewEmployeeService(employees hr.EmployeeRepository) *EmployeeService {
	return &EmployeeService{employees: employees}
}

func (s *EmployeeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *EmployeeService) Create(ctx context.Context, tenantID, companyID uuid.UUID, req EmployeeRequest) (*EmployeeResponse, error) {
	details, err := toDetails(req)
	if err != nil {
		return nil, err
	}
	exists, err := s.employees.ExistsByCNP(ctx, tenantID, companyID, strings.TrimSpace(req.CNP))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "An employee with this CNP already exists")
	}

	e, err := hr.NewEmployee(tenantID, companyID, details)
	if err != nil {
		return nil, err
	}
	e.CreatedBy = req.CreatedBy
	if err := s.employees.Save(ctx, e); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, e)

	response := ToEmployeeResponse(e)
	return &response, nil
}

func (s *EmployeeService) GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*EmployeeResponse, error) {
	e, err := s.employees.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToEmployeeResponse(e)
	return &response, nil
}

func (s *EmployeeService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter EmployeeListFilter) ([]EmployeeResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if d := strings.TrimSpace(filter.Department); d != "" {
		domainFilter.Filters["department"] = d
	}

	employees, err := s.employees.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.employees.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]EmployeeResponse, len(employees))
	for i := range employees {
		out[i] = ToEmployeeResponse(&employees[i])
	}
	return out, total, nil
}

func (s *EmployeeService) Update(ctx context.Context, tenantID, companyID, id uuid.UUID, req EmployeeRequest) (*EmployeeResponse, error) {
	e, err := s.employees.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	details, err := toDetails(req)
	if err != nil {
		return nil, err
	}
	if details.CNP != e.CNP {
		exists, err := s.employees.ExistsByCNP(ctx, tenantID, companyID, details.CNP)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "An employee with this CNP already exists")
		}
	}
	if err := e.Update(details); err != nil {
		return nil, err
	}
	if req.OnLeave != nil && *req.OnLeave != (e.Status == hr.EmployeeStatusOnLeave) {
		if err := e.SetOnLeave(*req.OnLeave); err != nil {
			return nil, err
		}
	}
	return s.save(ctx, e)
}

// Terminate ends the contract; today when no date is given.
func (s *EmployeeService) Terminate(ctx context.Context, tenantID, companyID, id uuid.UUID, req TerminateRequest) (*EmployeeResponse, error) {
	e, err := s.employees.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	var at time.Time
	if req.TerminationDate != "" {
		if at, err = time.Parse(dateLayout, req.TerminationDate); err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "termination_date must be YYYY-MM-DD")
		}
	}
	if err := e.Terminate(at); err != nil {
		return nil, err
	}
	return s.save(ctx, e)
}

func (s *EmployeeService) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	if _, err := s.employees.FindByID(ctx, tenantID, companyID, id); err != nil {
		return err
	}
	return s.employees.Delete(ctx, tenantID, companyID, id)
}

func (s *EmployeeService) save(ctx context.Context, e *hr.Employee) (*EmployeeResponse, error) {
	if err := s.employees.SaveWithLock(ctx, e); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, e)
	response := ToEmployeeResponse(e)
	return &response, nil
}

func (s *EmployeeService) publishDomainEvents(ctx context.Context, e *hr.Employee) {
	if s.eventPublisher == nil {
		e.ClearDomainEvents()
		return
	}
	if events := e.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		e.ClearDomainEvents()
	}
}

func toDetails(req EmployeeRequest) (hr.EmployeeDetails, error) {
	hire, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		return hr.EmployeeDetails{}, shared.NewDomainError("INVALID_INPUT", "hire_date must be YYYY-MM-DD")
	}
	return hr.EmployeeDetails{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		CNP:               strings.TrimSpace(req.CNP),
		Email:             req.Email,
		Phone:             req.Phone,
		Position:          req.Position,
		Department:        req.Department,
		HireDate:          hire,
		ContractType:      hr.ContractType(req.ContractType),
		GrossSalary:       req.GrossSalary,
		PersonalDeduction: req.PersonalDeduction,
		IBAN:              req.IBAN,
	}, nil
}

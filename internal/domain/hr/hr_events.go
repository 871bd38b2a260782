package hr

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeEmployee   = "Employee"
	AggregateTypePayrollRun = "PayrollRun"
)

const (
	EventTypeEmployeeHired      = "EmployeeHired"
	EventTypeEmployeeTerminated = "EmployeeTerminated"
	EventTypePayrollCalculated  = "PayrollCalculated"
	EventTypePayrollPaid        = "PayrollPaid"
)

type EmployeeHiredEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
}

func NewEmployeeHiredEvent(e *Employee) *EmployeeHiredEvent {
	return &EmployeeHiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeHired, AggregateTypeEmployee, e.ID, e.TenantID),
		CompanyID:       e.CompanyID,
		Name:            e.FullName(),
	}
}

type EmployeeTerminatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
}

func NewEmployeeTerminatedEvent(e *Employee) *EmployeeTerminatedEvent {
	return &EmployeeTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeTerminated, AggregateTypeEmployee, e.ID, e.TenantID),
		CompanyID:       e.CompanyID,
	}
}

type PayrollCalculatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID       `json:"company_id"`
	Period    string          `json:"period"`
	Employees int             `json:"employees"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

func NewPayrollCalculatedEvent(r *PayrollRun) *PayrollCalculatedEvent {
	return &PayrollCalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayrollCalculated, AggregateTypePayrollRun, r.ID, r.TenantID),
		CompanyID:       r.CompanyID,
		Period:          r.Period,
		Employees:       len(r.Entries),
		TotalCost:       r.Totals.TotalCost,
	}
}

type PayrollPaidEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID       `json:"company_id"`
	Period    string          `json:"period"`
	Net       decimal.Decimal `json:"net"`
}

func NewPayrollPaidEvent(r *PayrollRun) *PayrollPaidEvent {
	return &PayrollPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayrollPaid, AggregateTypePayrollRun, r.ID, r.TenantID),
		CompanyID:       r.CompanyID,
		Period:          r.Period,
		Net:             r.Totals.Net,
	}
}

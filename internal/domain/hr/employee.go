// Package hr keeps employee records and monthly payroll runs.
package hr

import (
	"net/mail"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusOnLeave    EmployeeStatus = "on_leave"
	EmployeeStatusTerminated EmployeeStatus = "terminated"
)

type ContractType string

const (
	ContractFullTime  ContractType = "full_time"
	ContractPartTime  ContractType = "part_time"
	ContractFixedTerm ContractType = "fixed_term"
)

func (c ContractType) IsValid() bool {
	return c == ContractFullTime || c == ContractPartTime || c == ContractFixedTerm
}

type Employee struct {
	shared.CompanyAggregateRoot
	FirstName         string
	LastName          string
	CNP               string
	Email             string
	Phone             string
	Position          string
	Department        string
	HireDate          time.Time
	TerminationDate   *time.Time
	ContractType      ContractType
	GrossSalary       decimal.Decimal
	PersonalDeduction decimal.Decimal
	IBAN              string
	Status            EmployeeStatus
}

// EmployeeDetails carries every editable employee attribute.
type EmployeeDetails struct {
	FirstName         string
	LastName          string
	CNP               string
	Email             string
	Phone             string
	Position          string
	Department        string
	HireDate          time.Time
	ContractType      ContractType
	GrossSalary       decimal.Decimal
	PersonalDeduction decimal.Decimal
	IBAN              string
}

func NewEmployee(tenantID, companyID uuid.UUID, details EmployeeDetails) (*Employee, error) {
	e := &Employee{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Status:               EmployeeStatusActive,
	}
	if err := e.apply(details); err != nil {
		return nil, err
	}
	e.AddDomainEvent(NewEmployeeHiredEvent(e))
	return e, nil
}

func (e *Employee) Update(details EmployeeDetails) error {
	if e.Status == EmployeeStatusTerminated {
		return shared.NewDomainError("EMPLOYEE_TERMINATED", "Terminated employees cannot be edited")
	}
	if err := e.apply(details); err != nil {
		return err
	}
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func (e *Employee) IsActive() bool {
	return e.Status == EmployeeStatusActive
}

func (e *Employee) SetOnLeave(onLeave bool) error {
	if e.Status == EmployeeStatusTerminated {
		return shared.NewDomainError("EMPLOYEE_TERMINATED", "Employee is terminated")
	}
	if onLeave {
		e.Status = EmployeeStatusOnLeave
	} else {
		e.Status = EmployeeStatusActive
	}
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// Terminate ends the contract at the given date, which cannot precede the hire date.
func (e *Employee) Terminate(at time.Time) error {
	if e.Status == EmployeeStatusTerminated {
		return shared.NewDomainError("EMPLOYEE_TERMINATED", "Employee is already terminated")
	}
	if at.IsZero() {
		at = time.Now()
	}
	if at.Before(e.HireDate) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Termination date cannot be before the hire date")
	}
	e.Status = EmployeeStatusTerminated
	e.TerminationDate = &at
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	e.AddDomainEvent(NewEmployeeTerminatedEvent(e))
	return nil
}

func (e *Employee) apply(d EmployeeDetails) error {
	first, last := strings.TrimSpace(d.FirstName), strings.TrimSpace(d.LastName)
	if first == "" || last == "" {
		return shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if err := valueobject.ValidateCNP(d.CNP); err != nil {
		return shared.NewDomainError("INVALID_CNP", "CNP is not valid")
	}
	email := strings.TrimSpace(d.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
		}
	}
	if d.HireDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Hire date is required")
	}
	contract := d.ContractType
	if contract == "" {
		contract = ContractFullTime
	}
	if !contract.IsValid() {
		return shared.NewDomainError("INVALID_CONTRACT_TYPE", "Contract type must be full_time, part_time or fixed_term")
	}
	if !d.GrossSalary.IsPositive() {
		return shared.NewDomainError("INVALID_SALARY", "Gross salary must be positive")
	}
	if d.PersonalDeduction.IsNegative() {
		return shared.NewDomainError("INVALID_DEDUCTION", "Personal deduction cannot be negative")
	}
	e.FirstName = first
	e.LastName = last
	e.CNP = strings.TrimSpace(d.CNP)
	e.Email = strings.ToLower(email)
	e.Phone = strings.TrimSpace(d.Phone)
	e.Position = strings.TrimSpace(d.Position)
	e.Department = strings.TrimSpace(d.Department)
	e.HireDate = d.HireDate
	e.ContractType = contract
	e.GrossSalary = d.GrossSalary
	e.PersonalDeduction = d.PersonalDeduction
	e.IBAN = strings.ToUpper(strings.ReplaceAll(d.IBAN, " ", ""))
	return nil
}

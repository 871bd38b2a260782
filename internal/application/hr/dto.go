package hr

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/hr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// EmployeeRequest carries every editable employee attribute; used for create and update.
type EmployeeRequest struct {
	FirstName         string          `json:"first_name" binding:"required,min=1,max=100"`
	LastName          string          `json:"last_name" binding:"required,min=1,max=100"`
	CNP               string          `json:"cnp" binding:"required,len=13,numeric"`
	Email             string          `json:"email" binding:"omitempty,email"`
	Phone             string          `json:"phone" binding:"max=30"`
	Position          string          `json:"position" binding:"max=100"`
	Department        string          `json:"department" binding:"max=100"`
	HireDate          string          `json:"hire_date" binding:"required,datetime=2006-01-02"`
	ContractType      string          `json:"contract_type" binding:"omitempty,oneof=full_time part_time fixed_term"`
	GrossSalary       decimal.Decimal `json:"gross_salary" binding:"required"`
	PersonalDeduction decimal.Decimal `json:"personal_deduction"`
	IBAN              string          `json:"iban" binding:"max=34"`
	// OnLeave toggles the on_leave status on update.
	OnLeave *bool `json:"on_leave"`

	CreatedBy *uuid.UUID `json:"-"`
}

type TerminateRequest struct {
	TerminationDate string `json:"termination_date" binding:"omitempty,datetime=2006-01-02"`
}

type EmployeeListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=active on_leave terminated"`
	Department string `form:"department"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

type EmployeeResponse struct {
	ID                uuid.UUID       `json:"id"`
	CompanyID         uuid.UUID       `json:"company_id"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	FullName          string          `json:"full_name"`
	CNP               string          `json:"cnp"`
	Email             string          `json:"email,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Position          string          `json:"position,omitempty"`
	Department        string          `json:"department,omitempty"`
	HireDate          string          `json:"hire_date"`
	TerminationDate   *string         `json:"termination_date,omitempty"`
	ContractType      string          `json:"contract_type"`
	GrossSalary       decimal.Decimal `json:"gross_salary"`
	PersonalDeduction decimal.Decimal `json:"personal_deduction"`
	IBAN              string          `json:"iban,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

type CreatePayrollRequest struct {
	Period string `json:"period" binding:"required,period"`
}

type PayrollListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft calculated approved paid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type PayrollEntryResponse struct {
	EmployeeID   uuid.UUID       `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Gross        decimal.Decimal `json:"gross"`
	CAS          decimal.Decimal `json:"cas"`
	CASS         decimal.Decimal `json:"cass"`
	Deduction    decimal.Decimal `json:"personal_deduction"`
	TaxableBase  decimal.Decimal `json:"taxable_base"`
	IncomeTax    decimal.Decimal `json:"income_tax"`
	Net          decimal.Decimal `json:"net"`
	CAM          decimal.Decimal `json:"cam"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

type PayrollTotalsResponse struct {
	Gross     decimal.Decimal `json:"gross"`
	CAS       decimal.Decimal `json:"cas"`
	CASS      decimal.Decimal `json:"cass"`
	IncomeTax decimal.Decimal `json:"income_tax"`
	Net       decimal.Decimal `json:"net"`
	CAM       decimal.Decimal `json:"cam"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type PayrollResponse struct {
	ID         uuid.UUID              `json:"id"`
	CompanyID  uuid.UUID              `json:"company_id"`
	Period     string                 `json:"period"`
	Status     string                 `json:"status"`
	Entries    []PayrollEntryResponse `json:"entries"`
	Totals     PayrollTotalsResponse  `json:"totals"`
	ApprovedAt *time.Time             `json:"approved_at,omitempty"`
	PaidAt     *time.Time             `json:"paid_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
	Version    int                    `json:"version"`
}

func ToEmployeeResponse(e *hr.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:                e.ID,
		CompanyID:         e.CompanyID,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		FullName:          e.FullName(),
		CNP:               e.CNP,
		Email:             e.Email,
		Phone:             e.Phone,
		Position:          e.Position,
		Department:        e.Department,
		HireDate:          e.HireDate.Format(dateLayout),
		ContractType:      string(e.ContractType),
		GrossSalary:       e.GrossSalary,
		PersonalDeduction: e.PersonalDeduction,
		IBAN:              e.IBAN,
		Status:            string(e.Status),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
		Version:           e.Version,
	}
	if e.TerminationDate != nil {
		d := e.TerminationDate.Format(dateLayout)
		resp.TerminationDate = &d
	}
	return resp
}

func ToPayrollResponse(r *hr.PayrollRun) PayrollResponse {
	entries := make([]PayrollEntryResponse, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = PayrollEntryResponse{
			EmployeeID:   e.EmployeeID,
			EmployeeName: e.EmployeeName,
			Gross:        e.Gross,
			CAS:          e.CAS,
			CASS:         e.CASS,
			Deduction:    e.Deduction,
			TaxableBase:  e.TaxableBase,
			IncomeTax:    e.IncomeTax,
			Net:          e.Net,
			CAM:          e.CAM,
			TotalCost:    e.TotalCost,
		}
	}
	return PayrollResponse{
		ID:        r.ID,
		CompanyID: r.CompanyID,
		Period:    r.Period,
		Status:    string(r.Status),
		Entries:   entries,
		Totals: PayrollTotalsResponse{
			Gross:     r.Totals.Gross,
			CAS:       r.Totals.CAS,
			CASS:      r.Totals.CASS,
			IncomeTax: r.Totals.IncomeTax,
			Net:       r.Totals.Net,
			CAM:       r.Totals.CAM,
			TotalCost: r.Totals.TotalCost,
		},
		ApprovedAt: r.ApprovedAt,
		PaidAt:     r.PaidAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Version:    r.Version,
	}
}

package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/hr"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type EmployeeModel struct {
	CompanyAggregateModel
	FirstName         string            `gorm:"type:varchar(100);not null"`
	LastName          string            `gorm:"type:varchar(100);not null"`
	CNP               string            `gorm:"column:cnp;type:varchar(13);not null"`
	Email             string            `gorm:"type:varchar(200)"`
	Phone             string            `gorm:"type:varchar(50)"`
	Position          string            `gorm:"type:varchar(100)"`
	Department        string            `gorm:"type:varchar(100);index"`
	HireDate          time.Time         `gorm:"type:date;not null"`
	TerminationDate   *time.Time        `gorm:"type:date"`
	ContractType      hr.ContractType   `gorm:"type:varchar(20);not null"`
	GrossSalary       decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	PersonalDeduction decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	IBAN              string            `gorm:"column:iban;type:varchar(34)"`
	Status            hr.EmployeeStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

func (EmployeeModel) TableName() string {
	return "employees"
}

func (m *EmployeeModel) ToDomain() *hr.Employee {
	return &hr.Employee{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		CNP:                  m.CNP,
		Email:                m.Email,
		Phone:                m.Phone,
		Position:             m.Position,
		Department:           m.Department,
		HireDate:             m.HireDate,
		TerminationDate:      m.TerminationDate,
		ContractType:         m.ContractType,
		GrossSalary:          m.GrossSalary,
		PersonalDeduction:    m.PersonalDeduction,
		IBAN:                 m.IBAN,
		Status:               m.Status,
	}
}

func EmployeeModelFromDomain(e *hr.Employee) *EmployeeModel {
	m := &EmployeeModel{
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		CNP:               e.CNP,
		Email:             e.Email,
		Phone:             e.Phone,
		Position:          e.Position,
		Department:        e.Department,
		HireDate:          e.HireDate,
		TerminationDate:   e.TerminationDate,
		ContractType:      e.ContractType,
		GrossSalary:       e.GrossSalary,
		PersonalDeduction: e.PersonalDeduction,
		IBAN:              e.IBAN,
		Status:            e.Status,
	}
	m.FromDomainCompanyAggregateRoot(e.CompanyAggregateRoot)
	return m
}

// PayrollRunModel stores the computed entries as a jsonb snapshot; they are immutable once approved.
type PayrollRunModel struct {
	CompanyAggregateModel
	Period         string           `gorm:"type:varchar(7);not null"`
	Status         hr.PayrollStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	Entries        datatypes.JSON   `gorm:"type:jsonb;not null"`
	TotalGross     decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	TotalCAS       decimal.Decimal  `gorm:"column:total_cas;type:decimal(18,2);not null"`
	TotalCASS      decimal.Decimal  `gorm:"column:total_cass;type:decimal(18,2);not null"`
	TotalIncomeTax decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	TotalNet       decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	TotalCAM       decimal.Decimal  `gorm:"column:total_cam;type:decimal(18,2);not null"`
	TotalCost      decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	ApprovedAt     *time.Time
	PaidAt         *time.Time
}

func (PayrollRunModel) TableName() string {
	return "payroll_runs"
}

func (m *PayrollRunModel) ToDomain() *hr.PayrollRun {
	run := &hr.PayrollRun{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Period:               m.Period,
		Status:               m.Status,
		Entries:              []hr.PayrollEntry{},
		Totals: hr.PayrollTotals{
			Gross:     m.TotalGross,
			CAS:       m.TotalCAS,
			CASS:      m.TotalCASS,
			IncomeTax: m.TotalIncomeTax,
			Net:       m.TotalNet,
			CAM:       m.TotalCAM,
			TotalCost: m.TotalCost,
		},
		ApprovedAt: m.ApprovedAt,
		PaidAt:     m.PaidAt,
	}
	fromJSON(m.Entries, &run.Entries)
	return run
}

func PayrollRunModelFromDomain(r *hr.PayrollRun) *PayrollRunModel {
	m := &PayrollRunModel{
		Period:         r.Period,
		Status:         r.Status,
		Entries:        toJSON(r.Entries, "[]"),
		TotalGross:     r.Totals.Gross,
		TotalCAS:       r.Totals.CAS,
		TotalCASS:      r.Totals.CASS,
		TotalIncomeTax: r.Totals.IncomeTax,
		TotalNet:       r.Totals.Net,
		TotalCAM:       r.Totals.CAM,
		TotalCost:      r.Totals.TotalCost,
		ApprovedAt:     r.ApprovedAt,
		PaidAt:         r.PaidAt,
	}
	m.FromDomainCompanyAggregateRoot(r.CompanyAggregateRoot)
	return m
}

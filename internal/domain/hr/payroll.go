package hr

import (
	"fmt"
	"regexp"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contribution rates, in percent.
var (
	RateCAS       = decimal.NewFromInt(25)
	RateCASS      = decimal.NewFromInt(10)
	RateIncomeTax = decimal.NewFromInt(10)
	RateCAM       = decimal.RequireFromString("2.25")
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidatePeriod accepts YYYY-MM.
func ValidatePeriod(period string) error {
	if !periodPattern.MatchString(period) {
		return shared.NewDomainError("INVALID_PERIOD", "Period must have the form YYYY-MM")
	}
	return nil
}

type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "draft"
	PayrollStatusCalculated PayrollStatus = "calculated"
	PayrollStatusApproved   PayrollStatus = "approved"
	PayrollStatusPaid       PayrollStatus = "paid"
)

// PayrollEntry is the salary breakdown of one employee for one period.
type PayrollEntry struct {
	ID           uuid.UUID
	EmployeeID   uuid.UUID
	EmployeeName string
	Gross        decimal.Decimal
	CAS          decimal.Decimal
	CASS         decimal.Decimal
	Deduction    decimal.Decimal
	TaxableBase  decimal.Decimal
	IncomeTax    decimal.Decimal
	Net          decimal.Decimal
	CAM          decimal.Decimal
	TotalCost    decimal.Decimal
}

// CalculateEntry applies the employee and employer contributions to a gross salary.
func CalculateEntry(employeeID uuid.UUID, name string, gross, deduction decimal.Decimal) PayrollEntry {
	gross = valueobject.Round2(gross)
	cas := valueobject.Percent(gross, RateCAS)
	cass := valueobject.Percent(gross, RateCASS)
	base := gross.Sub(cas).Sub(cass).Sub(deduction)
	if base.IsNegative() {
		base = decimal.Zero
	}
	base = valueobject.Round2(base)
	tax := valueobject.Percent(base, RateIncomeTax)
	cam := valueobject.Percent(gross, RateCAM)
	return PayrollEntry{
		ID:           uuid.New(),
		EmployeeID:   employeeID,
		EmployeeName: name,
		Gross:        gross,
		CAS:          cas,
		CASS:         cass,
		Deduction:    deduction,
		TaxableBase:  base,
		IncomeTax:    tax,
		Net:          gross.Sub(cas).Sub(cass).Sub(tax),
		CAM:          cam,
		TotalCost:    gross.Add(cam),
	}
}

// PayrollTotals sums the entries of a run.
type PayrollTotals struct {
	Gross     decimal.Decimal
	CAS       decimal.Decimal
	CASS      decimal.Decimal
	IncomeTax decimal.Decimal
	Net       decimal.Decimal
	CAM       decimal.Decimal
	TotalCost decimal.Decimal
}

type PayrollRun struct {
	shared.CompanyAggregateRoot
	Period     string
	Status     PayrollStatus
	Entries    []PayrollEntry
	Totals     PayrollTotals
	ApprovedAt *time.Time
	PaidAt     *time.Time
}

func NewPayrollRun(tenantID, companyID uuid.UUID, period string) (*PayrollRun, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	run := &PayrollRun{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Period:               period,
		Status:               PayrollStatusDraft,
		Entries:              []PayrollEntry{},
	}
	run.sum()
	return run, nil
}

// Calculate rebuilds the entries from the active employees.
func (r *PayrollRun) Calculate(employees []Employee) error {
	if r.Status != PayrollStatusDraft && r.Status != PayrollStatusCalculated {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot recalculate a payroll run in %s status", r.Status))
	}
	entries := make([]PayrollEntry, 0, len(employees))
	for i := range employees {
		e := &employees[i]
		if !e.IsActive() {
			continue
		}
		entries = append(entries, CalculateEntry(e.ID, e.FullName(), e.GrossSalary, e.PersonalDeduction))
	}
	r.Entries = entries
	r.sum()
	r.Status = PayrollStatusCalculated
	r.touch()
	r.AddDomainEvent(NewPayrollCalculatedEvent(r))
	return nil
}

func (r *PayrollRun) Approve() error {
	if r.Status != PayrollStatusCalculated {
		return shared.NewDomainError("INVALID_TRANSITION", "Only calculated payroll runs can be approved")
	}
	if len(r.Entries) == 0 {
		return shared.NewDomainError("EMPTY_PAYROLL", "Payroll run has no entries")
	}
	now := time.Now()
	r.Status = PayrollStatusApproved
	r.ApprovedAt = &now
	r.touch()
	return nil
}

func (r *PayrollRun) MarkPaid() error {
	if r.Status != PayrollStatusApproved {
		return shared.NewDomainError("INVALID_TRANSITION", "Only approved payroll runs can be paid")
	}
	now := time.Now()
	r.Status = PayrollStatusPaid
	r.PaidAt = &now
	r.touch()
	r.AddDomainEvent(NewPayrollPaidEvent(r))
	return nil
}

func (r *PayrollRun) sum() {
	t := PayrollTotals{
		Gross: decimal.Zero, CAS: decimal.Zero, CASS: decimal.Zero, IncomeTax: decimal.Zero,
		Net: decimal.Zero, CAM: decimal.Zero, TotalCost: decimal.Zero,
	}
	for _, e := range r.Entries {
		t.Gross = t.Gross.Add(e.Gross)
		t.CAS = t.CAS.Add(e.CAS)
		t.CASS = t.CASS.Add(e.CASS)
		t.IncomeTax = t.IncomeTax.Add(e.IncomeTax)
		t.Net = t.Net.Add(e.Net)
		t.CAM = t.CAM.Add(e.CAM)
		t.TotalCost = t.TotalCost.Add(e.TotalCost)
	}
	r.Totals = t
}

func (r *PayrollRun) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Package invoice models issued and received invoices, their VAT totals and their lifecycle.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is the counterparty printed on the invoice.
type Partner struct {
	Name    string
	CUI     string
	Address string
}

// Invoice is a fiscal document. Totals are always recomputed from lines.
type Invoice struct {
	shared.CompanyAggregateRoot
	ClientID           *uuid.UUID
	Series             string
	Number             string
	Type               Type
	IssueDate          time.Time
	DueDate            *time.Time
	Currency           valueobject.Currency
	ExchangeRate       decimal.Decimal
	BaseCurrency       valueobject.Currency
	Partner            Partner
	Lines              []Line
	NetAmount          decimal.Decimal
	VATAmount          decimal.Decimal
	GrossAmount        decimal.Decimal
	BaseNetAmount      decimal.Decimal
	BaseVATAmount      decimal.Decimal
	BaseGrossAmount    decimal.Decimal
	Status             Status
	PaidAt             *time.Time
	CancelledAt        *time.Time
	CancellationReason string
	Notes              string
}

// ErrCodeDuplicateNumber is returned when a number is already used in the company.
const ErrCodeDuplicateNumber = "DUPLICATE_NUMBER"

// FormatNumber renders the sequential number of a series, e.g. DI-000042.
func FormatNumber(series string, sequence int) string {
	return fmt.Sprintf("%s-%06d", strings.ToUpper(series), sequence)
}

func NewInvoice(tenantID, companyID uuid.UUID, invoiceType Type, series, number string, issueDate time.Time, partner Partner) (*Invoice, error) {
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Invoice type must be issued or received")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number is required")
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}
	if err := validatePartner(partner); err != nil {
		return nil, err
	}

	inv := &Invoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Series:               strings.ToUpper(strings.TrimSpace(series)),
		Number:               strings.ToUpper(number),
		Type:                 invoiceType,
		IssueDate:            issueDate,
		Currency:             valueobject.DefaultCurrency,
		ExchangeRate:         decimal.NewFromInt(1),
		BaseCurrency:         valueobject.DefaultCurrency,
		Partner:              normalizePartner(partner),
		Lines:                []Line{},
		Status:               StatusDraft,
	}
	inv.recalculate()
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// SetLines replaces all lines of a draft and recomputes totals.
func (i *Invoice) SetLines(lines []Line) error {
	if err := i.ensureEditable(); err != nil {
		return err
	}
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_LINES", "Invoice must have at least one line")
	}
	i.Lines = make([]Line, len(lines))
	for idx, l := range lines {
		l.LineNumber = idx + 1
		l.calculate()
		i.Lines[idx] = l
	}
	i.recalculate()
	i.touch()
	return nil
}

// SetCurrency sets the document currency. A RON invoice always has rate 1.
func (i *Invoice) SetCurrency(currency valueobject.Currency, rate decimal.Decimal) error {
	if err := i.ensureEditable(); err != nil {
		return err
	}
	if currency == i.BaseCurrency {
		rate = decimal.NewFromInt(1)
	}
	if !rate.IsPositive() {
		return shared.NewDomainError("INVALID_EXCHANGE_RATE", "Exchange rate must be positive")
	}
	i.Currency = currency
	i.ExchangeRate = rate
	i.recalculate()
	i.touch()
	return nil
}

// UpdateHeader changes the descriptive fields of a draft.
func (i *Invoice) UpdateHeader(issueDate time.Time, dueDate *time.Time, partner Partner, clientID *uuid.UUID, notes string) error {
	if err := i.ensureEditable(); err != nil {
		return err
	}
	if issueDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}
	if dueDate != nil && dueDate.Before(issueDate) {
		return shared.NewDomainError("INVALID_DATE", "Due date cannot be before issue date")
	}
	if err := validatePartner(partner); err != nil {
		return err
	}
	i.IssueDate = issueDate
	i.DueDate = dueDate
	i.Partner = normalizePartner(partner)
	i.ClientID = clientID
	i.Notes = notes
	i.touch()
	i.AddDomainEvent(NewInvoiceUpdatedEvent(i))
	return nil
}

// SetDueDate is used at creation time; it enforces the same ordering as UpdateHeader.
func (i *Invoice) SetDueDate(due *time.Time) error {
	if due != nil && due.Before(i.IssueDate) {
		return shared.NewDomainError("INVALID_DATE", "Due date cannot be before issue date")
	}
	i.DueDate = due
	return nil
}

// TransitionOptions carries the data some transitions need.
type TransitionOptions struct {
	PaidAt *time.Time
	Reason string
}

// TransitionTo moves the invoice along the status machine.
func (i *Invoice) TransitionTo(target Status, opts TransitionOptions) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status: %s", target))
	}
	if !i.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot change invoice status from %s to %s", i.Status, target))
	}
	if target == StatusPending || target == StatusSubmitted {
		if len(i.Lines) == 0 {
			return shared.NewDomainError("INVALID_LINES", "Invoice must have at least one line")
		}
	}

	now := time.Now()
	switch target {
	case StatusPaid:
		paidAt := now
		if opts.PaidAt != nil {
			paidAt = *opts.PaidAt
		}
		i.PaidAt = &paidAt
	case StatusCancelled:
		i.CancelledAt = &now
		i.CancellationReason = opts.Reason
	}

	previous := i.Status
	i.Status = target
	i.touch()
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, previous, target))
	return nil
}

func (i *Invoice) SubmitForApproval() error {
	return i.TransitionTo(StatusPending, TransitionOptions{})
}

func (i *Invoice) Approve() error {
	return i.TransitionTo(StatusApproved, TransitionOptions{})
}

// MarkSubmitted records that the invoice was uploaded to e-Factura.
func (i *Invoice) MarkSubmitted() error {
	if i.Status == StatusSubmitted {
		return nil
	}
	return i.TransitionTo(StatusSubmitted, TransitionOptions{})
}

func (i *Invoice) MarkPaid(paidAt *time.Time) error {
	return i.TransitionTo(StatusPaid, TransitionOptions{PaidAt: paidAt})
}

func (i *Invoice) Cancel(reason string) error {
	return i.TransitionTo(StatusCancelled, TransitionOptions{Reason: reason})
}

// CanDelete reports whether the invoice may be removed; only drafts can.
func (i *Invoice) CanDelete() error {
	if i.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be deleted")
	}
	return nil
}

// IsOverdue reports whether the due date has passed on an unpaid invoice.
// An invoice due today is not overdue until the next calendar day.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.DueDate == nil || i.Status.IsTerminal() {
		return false
	}
	return StartOfDay(*i.DueDate).Before(StartOfDay(now))
}

// StartOfDay returns midnight UTC of t's calendar day, the form dates are stored in.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsForeignCurrency reports whether base amounts differ from document amounts.
func (i *Invoice) IsForeignCurrency() bool {
	return i.Currency != i.BaseCurrency
}

func (i *Invoice) ensureEditable() error {
	if i.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be modified")
	}
	return nil
}

func (i *Invoice) recalculate() {
	net, vat := decimal.Zero, decimal.Zero
	for _, l := range i.Lines {
		net = net.Add(l.NetAmount)
		vat = vat.Add(l.VATAmount)
	}
	i.NetAmount = net
	i.VATAmount = vat
	i.GrossAmount = net.Add(vat)

	rate := i.ExchangeRate
	if !rate.IsPositive() {
		rate = decimal.NewFromInt(1)
	}
	i.BaseNetAmount = valueobject.Round2(net.Mul(rate))
	i.BaseVATAmount = valueobject.Round2(vat.Mul(rate))
	i.BaseGrossAmount = valueobject.Round2(i.GrossAmount.Mul(rate))
}

func (i *Invoice) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

func validatePartner(p Partner) error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.NewDomainError("INVALID_PARTNER", "Partner name is required")
	}
	if p.CUI != "" && !valueobject.IsValidCUI(p.CUI) {
		return shared.NewDomainError("INVALID_CUI", "Partner CUI is not a valid Romanian fiscal code")
	}
	return nil
}

func normalizePartner(p Partner) Partner {
	p.Name = strings.TrimSpace(p.Name)
	if p.CUI != "" {
		p.CUI = valueobject.NormalizeCUI(p.CUI)
	}
	return p
}

// Package invoice implements invoicing use cases: drafting, the status workflow, reporting and PDF output.
package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultSeries  = "DI"
	overdueLimit   = 200
	numberAttempts = 5
)

// RateProvider returns the BNR reference rate of a currency for a day.
type RateProvider interface {
	Rate(ctx context.Context, currency valueobject.Currency, day time.Time) (decimal.Decimal, error)
}

type ClientLookup interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*client.Client, error)
}

type CompanyLookup interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error)
}

// PDFPrinter renders an invoice for its supplier company.
type PDFPrinter interface {
	InvoicePDF(ctx context.Context, inv *invoice.Invoice, supplier *company.Company) ([]byte, error)
}

// InvoiceService handles invoice-related business operations
type InvoiceService struct {
	invoiceRepo    invoice.InvoiceRepository
	clients        ClientLookup
	companies      CompanyLookup
	rates          RateProvider
	printer        PDFPrinter
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

func NewInvoiceService(
	invoiceRepo invoice.InvoiceRepository,
	clients ClientLookup,
	companies CompanyLookup,
	rates RateProvider,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clients:     clients,
		companies:   companies,
		rates:       rates,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPrinter enables PDF rendering; without it PDF returns PDF_UNAVAILABLE.
func (s *InvoiceService) SetPrinter(printer PDFPrinter) {
	s.printer = printer
}

func (s *InvoiceService) Create(ctx context.Context, tenantID, companyID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	issueDate, err := parseDate("issue_date", req.IssueDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	invoiceType := invoice.TypeIssued
	if req.Type != "" {
		invoiceType = invoice.Type(req.Type)
	}

	partner, err := s.resolvePartner(ctx, tenantID, companyID, req.ClientID,
		invoice.Partner{Name: req.PartnerName, CUI: req.PartnerCUI, Address: req.PartnerAddress})
	if err != nil {
		return nil, err
	}

	series := strings.ToUpper(strings.TrimSpace(req.Series))
	if series == "" {
		series = DefaultSeries
	}
	number, err := s.assignNumber(ctx, tenantID, companyID, series, req.Number)
	if err != nil {
		return nil, err
	}

	inv, err := invoice.NewInvoice(tenantID, companyID, invoiceType, series, number, issueDate, partner)
	if err != nil {
		return nil, err
	}
	if err := inv.SetDueDate(dueDate); err != nil {
		return nil, err
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	if err := inv.SetLines(lines); err != nil {
		return nil, err
	}
	if err := s.applyCurrency(ctx, inv, req.Currency, req.ExchangeRate); err != nil {
		return nil, err
	}
	inv.ClientID = req.ClientID
	inv.Notes = req.Notes
	inv.CreatedBy = req.CreatedBy

	if err := s.save(ctx, inv, req.Number == ""); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, inv)

	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// save inserts a new invoice. A generated number that a concurrent create took
// first is replaced with the next free one.
func (s *InvoiceService) save(ctx context.Context, inv *invoice.Invoice, generated bool) error {
	for attempt := 1; ; attempt++ {
		err := s.invoiceRepo.Save(ctx, inv)
		if err == nil || !generated || attempt == numberAttempts ||
			shared.ErrorCode(err) != invoice.ErrCodeDuplicateNumber {
			return err
		}
		seq, err := s.invoiceRepo.NextSequence(ctx, inv.TenantID, inv.CompanyID, inv.Series)
		if err != nil {
			return err
		}
		s.logger.Debug("invoice number taken, retrying",
			zap.String("number", inv.Number), zap.Int("attempt", attempt))
		inv.Number = invoice.FormatNumber(inv.Series, seq)
	}
}

func (s *InvoiceService) GetByID(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

func (s *InvoiceService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter InvoiceListFilter) ([]InvoiceListResponse, int64, error) {
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
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.ClientID != "" {
		id, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "client_id must be a UUID")
		}
		domainFilter.Filters["client_id"] = id
	}
	if filter.FromDate != "" {
		from, err := parseDate("from_date", filter.FromDate)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["from_date"] = from
	}
	if filter.ToDate != "" {
		to, err := parseDate("to_date", filter.ToDate)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["to_date"] = to
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	out := make([]InvoiceListResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceListResponse(&invoices[i], now)
	}
	return out, total, nil
}

// Update replaces header and lines; only drafts accept it.
func (s *InvoiceService) Update(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	issueDate, err := parseDate("issue_date", req.IssueDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	partner, err := s.resolvePartner(ctx, tenantID, companyID, req.ClientID,
		invoice.Partner{Name: req.PartnerName, CUI: req.PartnerCUI, Address: req.PartnerAddress})
	if err != nil {
		return nil, err
	}

	if err := inv.UpdateHeader(issueDate, dueDate, partner, req.ClientID, req.Notes); err != nil {
		return nil, err
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	if err := inv.SetLines(lines); err != nil {
		return nil, err
	}
	if err := s.applyCurrency(ctx, inv, req.Currency, req.ExchangeRate); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, inv)

	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

func (s *InvoiceService) Delete(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, companyID, invoiceID)
	if err != nil {
		return err
	}
	return s.delete(ctx, inv)
}

func (s *InvoiceService) delete(ctx context.Context, inv *invoice.Invoice) error {
	if err := inv.CanDelete(); err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, inv.TenantID, inv.CompanyID, inv.ID); err != nil {
		return err
	}
	inv.AddDomainEvent(invoice.NewInvoiceDeletedEvent(inv))
	s.publishDomainEvents(ctx, inv)
	return nil
}

func (s *InvoiceService) SubmitForApproval(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, tenantID, companyID, invoiceID, invoice.StatusPending, invoice.TransitionOptions{})
}

func (s *InvoiceService) Approve(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, tenantID, companyID, invoiceID, invoice.StatusApproved, invoice.TransitionOptions{})
}

func (s *InvoiceService) MarkPaid(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req MarkPaidRequest) (*InvoiceResponse, error) {
	paidAt, err := parseOptionalDate("paid_at", req.PaidAt)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, tenantID, companyID, invoiceID, invoice.StatusPaid, invoice.TransitionOptions{PaidAt: paidAt})
}

func (s *InvoiceService) Cancel(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req CancelRequest) (*InvoiceResponse, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "A cancellation reason is required")
	}
	return s.transition(ctx, tenantID, companyID, invoiceID, invoice.StatusCancelled, invoice.TransitionOptions{Reason: req.Reason})
}

func (s *InvoiceService) transition(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, target invoice.Status, opts invoice.TransitionOptions) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.TransitionTo(target, opts); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, inv)

	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// AvailableTransitions lists the statuses the invoice can move to next.
func (s *InvoiceService) AvailableTransitions(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*TransitionsResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	next := inv.Status.AllowedTransitions()
	out := make([]string, len(next))
	for i, st := range next {
		out[i] = string(st)
	}
	return &TransitionsResponse{Status: string(inv.Status), Transitions: out}, nil
}

// Summary aggregates invoices issued in the period by status. Both bounds are inclusive days.
func (s *InvoiceService) Summary(ctx context.Context, tenantID, companyID uuid.UUID, filter SummaryFilter) (*SummaryResponse, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	var err error
	if filter.FromDate != "" {
		if from, err = parseDate("from_date", filter.FromDate); err != nil {
			return nil, err
		}
	}
	if filter.ToDate != "" {
		if to, err = parseDate("to_date", filter.ToDate); err != nil {
			return nil, err
		}
	}
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "to_date cannot be before from_date")
	}

	totals, err := s.invoiceRepo.SummarizeByStatus(ctx, tenantID, companyID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	resp := &SummaryResponse{
		FromDate:   from.Format(dateLayout),
		ToDate:     to.Format(dateLayout),
		TotalNet:   decimal.Zero,
		TotalVAT:   decimal.Zero,
		TotalGross: decimal.Zero,
		ByStatus:   make([]StatusSummary, 0, len(totals)),
	}
	for _, t := range totals {
		resp.ByStatus = append(resp.ByStatus, StatusSummary{
			Status:      string(t.Status),
			Count:       t.Count,
			NetAmount:   t.NetAmount,
			VATAmount:   t.VATAmount,
			GrossAmount: t.GrossAmount,
		})
		resp.TotalCount += t.Count
		// Cancelled invoices are counted but carry no value.
		if t.Status == invoice.StatusCancelled {
			continue
		}
		resp.TotalNet = resp.TotalNet.Add(t.NetAmount)
		resp.TotalVAT = resp.TotalVAT.Add(t.VATAmount)
		resp.TotalGross = resp.TotalGross.Add(t.GrossAmount)
	}
	return resp, nil
}

// Overdue lists open invoices past their due date.
func (s *InvoiceService) Overdue(ctx context.Context, tenantID, companyID uuid.UUID) ([]InvoiceListResponse, error) {
	now := s.now()
	invoices, err := s.invoiceRepo.FindOverdue(ctx, tenantID, companyID, invoice.StartOfDay(now), overdueLimit)
	if err != nil {
		return nil, err
	}
	out := make([]InvoiceListResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceListResponse(&invoices[i], now)
	}
	return out, nil
}

// PDF renders the invoice and returns the document with a download file name.
func (s *InvoiceService) PDF(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) ([]byte, string, error) {
	if s.printer == nil {
		return nil, "", shared.NewDomainError("PDF_UNAVAILABLE", "PDF rendering is not enabled")
	}
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, companyID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	supplier, err := s.companies.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.printer.InvoicePDF(ctx, inv, supplier)
	if err != nil {
		s.logger.Error("invoice pdf rendering failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return nil, "", err
	}
	return pdf, fmt.Sprintf("factura-%s.pdf", inv.Number), nil
}

// resolvePartner fills partner fields left empty from the linked client.
func (s *InvoiceService) resolvePartner(ctx context.Context, tenantID, companyID uuid.UUID, clientID *uuid.UUID, partner invoice.Partner) (invoice.Partner, error) {
	if clientID == nil || s.clients == nil {
		return partner, nil
	}
	c, err := s.clients.FindByID(ctx, tenantID, companyID, *clientID)
	if err != nil {
		if shared.ErrorCode(err) == shared.ErrNotFound.Code {
			return partner, shared.NewDomainError("INVALID_CLIENT", "Client does not belong to this company")
		}
		return partner, err
	}
	if strings.TrimSpace(partner.Name) == "" {
		partner.Name = c.Name
	}
	if strings.TrimSpace(partner.CUI) == "" {
		partner.CUI = c.CUI
	}
	if strings.TrimSpace(partner.Address) == "" {
		partner.Address = joinAddress(c.Address, c.City, c.County)
	}
	return partner, nil
}

func (s *InvoiceService) assignNumber(ctx context.Context, tenantID, companyID uuid.UUID, series, requested string) (string, error) {
	requested = strings.ToUpper(strings.TrimSpace(requested))
	if requested == "" {
		seq, err := s.invoiceRepo.NextSequence(ctx, tenantID, companyID, series)
		if err != nil {
			return "", err
		}
		return invoice.FormatNumber(series, seq), nil
	}
	exists, err := s.invoiceRepo.ExistsByNumber(ctx, tenantID, companyID, requested)
	if err != nil {
		return "", err
	}
	if exists {
		return "", shared.NewDomainError(invoice.ErrCodeDuplicateNumber, fmt.Sprintf("Invoice number %s is already used", requested))
	}
	return requested, nil
}

// applyCurrency sets the document currency, asking BNR for the issue-day rate when none was given.
func (s *InvoiceService) applyCurrency(ctx context.Context, inv *invoice.Invoice, code string, rate *decimal.Decimal) error {
	currency, err := valueobject.ParseCurrency(code)
	if err != nil {
		return shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	if currency == inv.BaseCurrency {
		return inv.SetCurrency(currency, decimal.NewFromInt(1))
	}
	if rate != nil {
		return inv.SetCurrency(currency, *rate)
	}
	if s.rates == nil {
		return shared.NewDomainError("EXCHANGE_RATE_REQUIRED", "An exchange rate is required for foreign currency invoices")
	}
	fetched, err := s.rates.Rate(ctx, currency, inv.IssueDate)
	if err != nil {
		s.logger.Warn("BNR rate lookup failed",
			zap.String("currency", string(currency)),
			zap.Time("issue_date", inv.IssueDate),
			zap.Error(err))
		return shared.NewDomainError("EXCHANGE_RATE_UNAVAILABLE",
			fmt.Sprintf("No BNR exchange rate available for %s; provide exchange_rate", currency))
	}
	return inv.SetCurrency(currency, fetched)
}

func (s *InvoiceService) publishDomainEvents(ctx context.Context, inv *invoice.Invoice) {
	if s.eventPublisher == nil {
		return
	}
	if events := inv.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		inv.ClearDomainEvents()
	}
}

func buildLines(reqs []LineRequest) ([]invoice.Line, error) {
	lines := make([]invoice.Line, 0, len(reqs))
	for i, r := range reqs {
		line, err := invoice.NewLine(r.Description, r.Quantity, r.Unit, r.UnitPrice, r.VATRate)
		if err != nil {
			if code := shared.ErrorCode(err); code != "" {
				return nil, shared.NewDomainError(code, fmt.Sprintf("Line %d: %s", i+1, err.Error()))
			}
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func joinAddress(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_INPUT", field+" must be a date (YYYY-MM-DD)")
	}
	return t, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

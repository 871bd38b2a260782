package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDs(ctx context.Context, tenantID, companyID uuid.UUID, ids []uuid.UUID) ([]invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, companyID, ids)
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountForCompany(ctx context.Context, tenantID, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, tenantID, companyID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, tenantID, companyID, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) NextSequence(ctx context.Context, tenantID, companyID uuid.UUID, series string) (int, error) {
	args := m.Called(ctx, tenantID, companyID, series)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, tenantID, companyID uuid.UUID, asOf time.Time, limit int) ([]invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, companyID, asOf, limit)
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SummarizeByStatus(ctx context.Context, tenantID, companyID uuid.UUID, from, to time.Time) ([]invoice.StatusTotals, error) {
	args := m.Called(ctx, tenantID, companyID, from, to)
	return args.Get(0).([]invoice.StatusTotals), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, companyID, id).Error(0)
}

type MockClientLookup struct {
	mock.Mock
}

func (m *MockClientLookup) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, tenantID, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

type MockCompanyLookup struct {
	mock.Mock
}

func (m *MockCompanyLookup) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) Rate(ctx context.Context, currency valueobject.Currency, day time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, currency, day)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type stubPrinter struct {
	pdf []byte
	err error
}

func (p stubPrinter) InvoicePDF(context.Context, *invoice.Invoice, *company.Company) ([]byte, error) {
	return p.pdf, p.err
}

type fixture struct {
	repo      *MockInvoiceRepository
	clients   *MockClientLookup
	companies *MockCompanyLookup
	rates     *MockRateProvider
	svc       *InvoiceService
	tenantID  uuid.UUID
	companyID uuid.UUID
}

var fixedNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockInvoiceRepository),
		clients:   new(MockClientLookup),
		companies: new(MockCompanyLookup),
		rates:     new(MockRateProvider),
		tenantID:  uuid.New(),
		companyID: uuid.New(),
	}
	f.svc = NewInvoiceService(f.repo, f.clients, f.companies, f.rates, nil)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) draft(t *testing.T, number string) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.NewInvoice(f.tenantID, f.companyID, invoice.TypeIssued, "DI", number,
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), invoice.Partner{Name: "Client Test SA", CUI: "14399840"})
	require.NoError(t, err)
	line, err := invoice.NewLine("Servicii contabilitate", decimal.NewFromInt(1), "luna", decimal.NewFromInt(1000), decimal.NewFromInt(19))
	require.NoError(t, err)
	require.NoError(t, inv.SetLines([]invoice.Line{line}))
	inv.ClearDomainEvents()
	return inv
}

func lineRequest() LineRequest {
	return LineRequest{
		Description: "Servicii contabilitate",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.RequireFromString("500.00"),
		VATRate:     decimal.NewFromInt(19),
	}
}

func TestInvoiceService_CreateGeneratesNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.repo.On("NextSequence", ctx, f.tenantID, f.companyID, "DI").Return(7, nil)
	f.repo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	resp, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		IssueDate:   "2026-10-15",
		DueDate:     "2026-11-14",
		PartnerName: "Client Test SA",
		PartnerCUI:  "RO14399840",
		Lines:       []LineRequest{lineRequest()},
	})
	require.NoError(t, err)
	assert.Equal(t, "DI-000007", resp.Number)
	assert.Equal(t, "issued", resp.Type)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "14399840", resp.PartnerCUI)
	assert.Equal(t, "buc", resp.Lines[0].Unit)
	assert.True(t, decimal.RequireFromString("1000").Equal(resp.NetAmount))
	assert.True(t, decimal.RequireFromString("190").Equal(resp.VATAmount))
	assert.True(t, decimal.RequireFromString("1190").Equal(resp.GrossAmount))
	f.rates.AssertNotCalled(t, "Rate", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_CreateDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.repo.On("ExistsByNumber", ctx, f.tenantID, f.companyID, "DI-000007").Return(true, nil)

	_, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		Number:      "di-000007",
		IssueDate:   "2026-10-15",
		PartnerName: "Client Test SA",
		Lines:       []LineRequest{lineRequest()},
	})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_NUMBER", shared.ErrorCode(err))
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_CreateRetriesTakenGeneratedNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	taken := shared.NewDomainError(invoice.ErrCodeDuplicateNumber, "taken")

	f.repo.On("NextSequence", ctx, f.tenantID, f.companyID, "DI").Return(7, nil).Once()
	f.repo.On("NextSequence", ctx, f.tenantID, f.companyID, "DI").Return(8, nil).Once()
	f.repo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(taken).Once()
	f.repo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil).Once()

	resp, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		IssueDate:   "2026-10-15",
		PartnerName: "Client Test SA",
		Lines:       []LineRequest{lineRequest()},
	})
	require.NoError(t, err)
	assert.Equal(t, "DI-000008", resp.Number)
	f.repo.AssertNumberOfCalls(t, "Save", 2)
}

func TestInvoiceService_CreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	taken := shared.NewDomainError(invoice.ErrCodeDuplicateNumber, "taken")

	f.repo.On("NextSequence", ctx, f.tenantID, f.companyID, "DI").Return(3, nil)
	f.repo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(taken)

	_, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		IssueDate:   "2026-10-15",
		PartnerName: "Client Test SA",
		Lines:       []LineRequest{lineRequest()},
	})
	assert.Equal(t, "DUPLICATE_NUMBER", shared.ErrorCode(err))
	f.repo.AssertNumberOfCalls(t, "Save", numberAttempts)
}

func TestInvoiceService_CreateFetchesBNRRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	issue := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	f.repo.On("NextSequence", ctx, f.tenantID, f.companyID, "EXP").Return(1, nil)
	f.rates.On("Rate", ctx, valueobject.EUR, issue).Return(decimal.RequireFromString("4.9767"), nil)
	f.repo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	resp, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		Series:      "exp",
		IssueDate:   "2026-10-15",
		Currency:    "eur",
		PartnerName: "Kunde GmbH",
		Lines:       []LineRequest{lineRequest()},
	})
	require.NoError(t, err)
	assert.Equal(t, "EXP-000001", resp.Number)
	assert.Equal(t, "EUR", resp.Currency)
	assert.Equal(t, "RON", resp.BaseCurrency)
	assert.True(t, decimal.RequireFromString("4.9767").Equal(resp.ExchangeRate))
	assert.True(t, decimal.RequireFromString("5922.27").Equal(resp.BaseGrossAmount))
}

func TestInvoiceService_CreateRateUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.repo.On("NextSequence", ctx, f.tenantID, f.companyID, "DI").Return(1, nil)
	f.rates.On("Rate", ctx, valueobject.USD, mock.Anything).Return(decimal.Zero, errors.New("bnr down"))

	_, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		IssueDate:   "2026-10-15",
		Currency:    "USD",
		PartnerName: "Client Inc",
		Lines:       []LineRequest{lineRequest()},
	})
	require.Error(t, err)
	assert.Equal(t, "EXCHANGE_RATE_UNAVAILABLE", shared.ErrorCode(err))
}

func TestInvoiceService_CreateExplicitRateSkipsBNR(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	rate := decimal.RequireFromString("5.00")

	f.repo.On("NextSequence", ctx, f.tenantID, f.companyID, "DI").Return(3, nil)
	f.repo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	resp, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		IssueDate:    "2026-10-15",
		Currency:     "EUR",
		ExchangeRate: &rate,
		PartnerName:  "Kunde GmbH",
		Lines:        []LineRequest{lineRequest()},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5950").Equal(resp.BaseGrossAmount))
	f.rates.AssertNotCalled(t, "Rate", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_CreateFillsPartnerFromClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	c, err := client.NewClient(f.tenantID, f.companyID, "Client Test SA", client.TypeCompany, "14399840")
	require.NoError(t, err)
	c.Address = "Str. Memorandumului 28"
	c.City = "Cluj-Napoca"
	f.clients.On("FindByID", ctx, f.tenantID, f.companyID, c.ID).Return(c, nil)
	f.repo.On("NextSequence", ctx, f.tenantID, f.companyID, "DI").Return(1, nil)
	f.repo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	resp, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		ClientID:  &c.ID,
		IssueDate: "2026-10-15",
		Lines:     []LineRequest{lineRequest()},
	})
	require.NoError(t, err)
	assert.Equal(t, "Client Test SA", resp.PartnerName)
	assert.Equal(t, "14399840", resp.PartnerCUI)
	assert.Equal(t, "Str. Memorandumului 28, Cluj-Napoca", resp.PartnerAddress)
	assert.Equal(t, &c.ID, resp.ClientID)
}

func TestInvoiceService_CreateUnknownClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	clientID := uuid.New()

	f.clients.On("FindByID", ctx, f.tenantID, f.companyID, clientID).Return(nil, shared.ErrNotFound)

	_, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreateInvoiceRequest{
		ClientID:  &clientID,
		IssueDate: "2026-10-15",
		Lines:     []LineRequest{lineRequest()},
	})
	assert.Equal(t, "INVALID_CLIENT", shared.ErrorCode(err))
}

func TestInvoiceService_CreateInvalidLine(t *testing.T) {
	f := newFixture()
	f.repo.On("NextSequence", mock.Anything, f.tenantID, f.companyID, "DI").Return(1, nil)

	bad := lineRequest()
	bad.VATRate = decimal.NewFromInt(20)
	_, err := f.svc.Create(context.Background(), f.tenantID, f.companyID, CreateInvoiceRequest{
		IssueDate:   "2026-10-15",
		PartnerName: "Client Test SA",
		Lines:       []LineRequest{lineRequest(), bad},
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_VAT_RATE", shared.ErrorCode(err))
	assert.Contains(t, err.Error(), "Line 2")
}

func TestInvoiceService_UpdateRejectsNonDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.draft(t, "DI-000001")
	require.NoError(t, inv.SubmitForApproval())

	f.repo.On("FindByID", ctx, f.tenantID, f.companyID, inv.ID).Return(inv, nil)

	_, err := f.svc.Update(ctx, f.tenantID, f.companyID, inv.ID, UpdateInvoiceRequest{
		IssueDate:   "2026-10-02",
		PartnerName: "Client Test SA",
		Lines:       []LineRequest{lineRequest()},
	})
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
	f.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestInvoiceService_Workflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.draft(t, "DI-000001")

	f.repo.On("FindByID", ctx, f.tenantID, f.companyID, inv.ID).Return(inv, nil)
	f.repo.On("SaveWithLock", ctx, inv).Return(nil)

	resp, err := f.svc.SubmitForApproval(ctx, f.tenantID, f.companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)

	transitions, err := f.svc.AvailableTransitions(ctx, f.tenantID, f.companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"submitted", "approved", "cancelled"}, transitions.Transitions)

	resp, err = f.svc.Approve(ctx, f.tenantID, f.companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)

	resp, err = f.svc.MarkPaid(ctx, f.tenantID, f.companyID, inv.ID, MarkPaidRequest{PaidAt: "2026-10-17"})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	require.NotNil(t, resp.PaidAt)
	assert.Equal(t, "2026-10-17", resp.PaidAt.Format(dateLayout))

	_, err = f.svc.Cancel(ctx, f.tenantID, f.companyID, inv.ID, CancelRequest{Reason: "eroare"})
	assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
}

func TestInvoiceService_CancelRequiresReason(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Cancel(context.Background(), f.tenantID, f.companyID, uuid.New(), CancelRequest{Reason: "  "})
	assert.Equal(t, "INVALID_INPUT", shared.ErrorCode(err))
}

func TestInvoiceService_DeleteOnlyDrafts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	draft := f.draft(t, "DI-000001")
	approved := f.draft(t, "DI-000002")
	require.NoError(t, approved.TransitionTo(invoice.StatusSubmitted, invoice.TransitionOptions{}))

	f.repo.On("FindByID", ctx, f.tenantID, f.companyID, draft.ID).Return(draft, nil)
	f.repo.On("FindByID", ctx, f.tenantID, f.companyID, approved.ID).Return(approved, nil)
	f.repo.On("Delete", ctx, f.tenantID, f.companyID, draft.ID).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, f.tenantID, f.companyID, draft.ID))
	err := f.svc.Delete(ctx, f.tenantID, f.companyID, approved.ID)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
	f.repo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestInvoiceService_SummaryDefaultsToCurrentMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	f.repo.On("SummarizeByStatus", ctx, f.tenantID, f.companyID, from, to).Return([]invoice.StatusTotals{
		{Status: invoice.StatusPaid, Count: 2, NetAmount: decimal.NewFromInt(200), VATAmount: decimal.NewFromInt(38), GrossAmount: decimal.NewFromInt(238)},
		{Status: invoice.StatusDraft, Count: 1, NetAmount: decimal.NewFromInt(100), VATAmount: decimal.NewFromInt(19), GrossAmount: decimal.NewFromInt(119)},
		{Status: invoice.StatusCancelled, Count: 1, NetAmount: decimal.NewFromInt(50), VATAmount: decimal.Zero, GrossAmount: decimal.NewFromInt(50)},
	}, nil)

	resp, err := f.svc.Summary(ctx, f.tenantID, f.companyID, SummaryFilter{})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-01", resp.FromDate)
	assert.Equal(t, "2026-10-31", resp.ToDate)
	assert.Equal(t, int64(4), resp.TotalCount)
	assert.True(t, decimal.NewFromInt(300).Equal(resp.TotalNet))
	assert.True(t, decimal.NewFromInt(357).Equal(resp.TotalGross))
	assert.Len(t, resp.ByStatus, 3)
}

func TestInvoiceService_SummaryInvalidRange(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Summary(context.Background(), f.tenantID, f.companyID, SummaryFilter{FromDate: "2026-10-10", ToDate: "2026-10-01"})
	assert.Equal(t, "INVALID_DATE_RANGE", shared.ErrorCode(err))
}

func TestInvoiceService_Overdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.draft(t, "DI-000001")
	due := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	inv.DueDate = &due
	today := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	f.repo.On("FindOverdue", ctx, f.tenantID, f.companyID, today, overdueLimit).Return([]invoice.Invoice{*inv}, nil)

	items, err := f.svc.Overdue(ctx, f.tenantID, f.companyID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Overdue)
}

func TestInvoiceService_GetByID_DueTodayIsNotOverdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.draft(t, "DI-000002")
	due := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	inv.DueDate = &due

	f.repo.On("FindByID", ctx, f.tenantID, f.companyID, inv.ID).Return(inv, nil)

	resp, err := f.svc.GetByID(ctx, f.tenantID, f.companyID, inv.ID)
	require.NoError(t, err)
	assert.False(t, resp.Overdue)
}

func TestInvoiceService_PDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.draft(t, "DI-000009")
	supplier, err := company.NewCompany(f.tenantID, "Contabil Expert SRL", "RO18547290")
	require.NoError(t, err)

	_, _, err = f.svc.PDF(ctx, f.tenantID, f.companyID, inv.ID)
	assert.Equal(t, "PDF_UNAVAILABLE", shared.ErrorCode(err))

	f.svc.SetPrinter(stubPrinter{pdf: []byte("%PDF-1.7")})
	f.repo.On("FindByID", ctx, f.tenantID, f.companyID, inv.ID).Return(inv, nil)
	f.companies.On("FindByIDForTenant", ctx, f.tenantID, f.companyID).Return(supplier, nil)

	pdf, name, err := f.svc.PDF(ctx, f.tenantID, f.companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "factura-DI-000009.pdf", name)
	assert.Equal(t, []byte("%PDF-1.7"), pdf)
}

func TestInvoiceService_BulkStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	draft := f.draft(t, "DI-000001")
	paid := f.draft(t, "DI-000002")
	require.NoError(t, paid.TransitionTo(invoice.StatusSubmitted, invoice.TransitionOptions{}))
	require.NoError(t, paid.MarkPaid(nil))
	missing := uuid.New()

	ids := []uuid.UUID{draft.ID, paid.ID, draft.ID, missing}
	f.repo.On("FindByIDs", ctx, f.tenantID, f.companyID, []uuid.UUID{draft.ID, paid.ID, missing}).
		Return([]invoice.Invoice{*draft, *paid}, nil)
	f.repo.On("SaveWithLock", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	result, err := f.svc.BulkStatus(ctx, f.tenantID, f.companyID, BulkStatusRequest{IDs: ids, Status: "cancelled", Reason: "duplicat"})
	require.NoError(t, err)

	assert.Equal(t, BulkSummary{Total: 3, Updated: 1, Failed: 2}, result.Summary)
	require.Len(t, result.Success, 1)
	assert.Equal(t, draft.ID, result.Success[0].ID)
	assert.Equal(t, "draft", result.Success[0].PreviousStatus)
	assert.Equal(t, "cancelled", result.Success[0].NewStatus)

	require.Len(t, result.Failed, 2)
	assert.Equal(t, "INVALID_TRANSITION", result.Failed[0].ErrorCode)
	assert.Equal(t, "DI-000002", result.Failed[0].Number)
	assert.Equal(t, missing, result.Failed[1].ID)
	assert.Equal(t, "NOT_FOUND", result.Failed[1].ErrorCode)
}

func TestInvoiceService_BulkStatusInfrastructureError(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.draft(t, "DI-000001")

	f.repo.On("FindByIDs", ctx, f.tenantID, f.companyID, []uuid.UUID{inv.ID}).Return([]invoice.Invoice{*inv}, nil)
	f.repo.On("SaveWithLock", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(errors.New("connection reset"))

	result, err := f.svc.BulkStatus(ctx, f.tenantID, f.companyID, BulkStatusRequest{IDs: []uuid.UUID{inv.ID}, Status: "pending"})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "INTERNAL_ERROR", result.Failed[0].ErrorCode)
	assert.NotContains(t, result.Failed[0].Error, "connection reset")
}

func TestInvoiceService_BulkStatusRejectsDraftTarget(t *testing.T) {
	f := newFixture()
	_, err := f.svc.BulkStatus(context.Background(), f.tenantID, f.companyID, BulkStatusRequest{IDs: []uuid.UUID{uuid.New()}, Status: "draft"})
	assert.Equal(t, "INVALID_STATUS", shared.ErrorCode(err))
}

func TestInvoiceService_BulkDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	draft := f.draft(t, "DI-000001")
	pending := f.draft(t, "DI-000002")
	require.NoError(t, pending.SubmitForApproval())

	f.repo.On("FindByIDs", ctx, f.tenantID, f.companyID, []uuid.UUID{draft.ID, pending.ID}).
		Return([]invoice.Invoice{*draft, *pending}, nil)
	f.repo.On("Delete", ctx, f.tenantID, f.companyID, draft.ID).Return(nil)

	result, err := f.svc.BulkDelete(ctx, f.tenantID, f.companyID, BulkDeleteRequest{IDs: []uuid.UUID{draft.ID, pending.ID}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Updated)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, result.Summary.Total, result.Summary.Updated+result.Summary.Failed)
	assert.Equal(t, "INVALID_STATE", result.Failed[0].ErrorCode)
}

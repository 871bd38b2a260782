package efactura

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/efactura"
	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/anaf"
	"github.com/documentiulia/backend/internal/infrastructure/cache"
	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/documentiulia/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*efactura.Submission, error) {
	args := m.Called(ctx, tenantID, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*efactura.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) FindLatestByInvoice(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*efactura.Submission, error) {
	args := m.Called(ctx, tenantID, companyID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*efactura.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]efactura.Submission, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).([]efactura.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepository) FindProcessing(ctx context.Context, tenantID, companyID uuid.UUID, limit int) ([]efactura.Submission, error) {
	args := m.Called(ctx, tenantID, companyID, limit)
	return args.Get(0).([]efactura.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) FindCompaniesWithProcessing(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockSubmissionRepository) FindDueForRetry(ctx context.Context, tenantID uuid.UUID, now time.Time, maxAttempts, limit int) ([]efactura.Submission, error) {
	args := m.Called(ctx, tenantID, now, maxAttempts, limit)
	return args.Get(0).([]efactura.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Stats(ctx context.Context, tenantID, companyID uuid.UUID, since time.Time) (*efactura.Stats, error) {
	args := m.Called(ctx, tenantID, companyID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*efactura.Stats), args.Error(1)
}

func (m *MockSubmissionRepository) Save(ctx context.Context, s *efactura.Submission) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubmissionRepository) SaveWithLock(ctx context.Context, s *efactura.Submission) error {
	return m.Called(ctx, s).Error(0)
}

type MockInvoiceStore struct {
	mock.Mock
}

func (m *MockInvoiceStore) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	return m.Called(ctx, inv).Error(0)
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

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Upload(ctx context.Context, cui string, document []byte) (*anaf.UploadResult, error) {
	args := m.Called(ctx, cui, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anaf.UploadResult), args.Error(1)
}

func (m *MockGateway) Status(ctx context.Context, uploadIndex string) (*anaf.StatusResult, error) {
	args := m.Called(ctx, uploadIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anaf.StatusResult), args.Error(1)
}

type fixture struct {
	subs      *MockSubmissionRepository
	invoices  *MockInvoiceStore
	companies *MockCompanyLookup
	gateway   *MockGateway
	files     *storage.MemoryStorage
	claims    *cache.InMemoryIdempotencyStore
	svc       *EFacturaService
	tenantID  uuid.UUID
	companyID uuid.UUID
	supplier  *company.Company
}

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		subs:      new(MockSubmissionRepository),
		invoices:  new(MockInvoiceStore),
		companies: new(MockCompanyLookup),
		gateway:   new(MockGateway),
		files:     storage.NewMemoryStorage("http://files.test"),
		claims:    cache.NewInMemoryIdempotencyStore(),
		tenantID:  uuid.New(),
		companyID: uuid.New(),
	}
	t.Cleanup(func() { _ = f.claims.Close() })

	supplier, err := company.NewCompany(f.tenantID, "Contabil Expert SRL", "RO18547290")
	require.NoError(t, err)
	require.NoError(t, supplier.Update("Contabil Expert SRL", company.Details{
		Address: "Bd. Unirii 10", City: "Bucuresti", County: "Bucuresti", VATPayer: true,
	}))
	f.supplier = supplier
	f.companies.On("FindByIDForTenant", mock.Anything, f.tenantID, f.companyID).Return(supplier, nil)

	f.svc = NewEFacturaService(config.EFacturaConfig{}, f.subs, f.invoices, f.companies, f.gateway, f.files, f.claims, nil)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

// invoiceIn returns an issued invoice moved to status.
func (f *fixture) invoiceIn(t *testing.T, number string, status invoice.Status) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.NewInvoice(f.tenantID, f.companyID, invoice.TypeIssued, "DI", number,
		time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), invoice.Partner{Name: "Client Test SA", CUI: "14399840"})
	require.NoError(t, err)
	line, err := invoice.NewLine("Servicii contabilitate", decimal.NewFromInt(1), "luna", decimal.NewFromInt(1000), decimal.NewFromInt(19))
	require.NoError(t, err)
	require.NoError(t, inv.SetLines([]invoice.Line{line}))
	switch status {
	case invoice.StatusApproved:
		require.NoError(t, inv.SubmitForApproval())
		require.NoError(t, inv.Approve())
	case invoice.StatusPending:
		require.NoError(t, inv.SubmitForApproval())
	}
	inv.ClearDomainEvents()
	f.invoices.On("FindByID", mock.Anything, f.tenantID, f.companyID, inv.ID).Return(inv, nil)
	return inv
}

func (f *fixture) processing(t *testing.T, inv *invoice.Invoice, index string) *efactura.Submission {
	t.Helper()
	sub, err := efactura.NewSubmission(f.tenantID, f.companyID, inv.ID, inv.Number)
	require.NoError(t, err)
	require.NoError(t, sub.BeginAttempt())
	require.NoError(t, sub.MarkUploaded(index))
	sub.ClearDomainEvents()
	return sub
}

func TestEFacturaService_SubmitApproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000007", invoice.StatusApproved)

	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(nil, shared.ErrNotFound)
	f.gateway.On("Upload", ctx, "18547290", mock.AnythingOfType("[]uint8")).
		Return(&anaf.UploadResult{UploadIndex: "5001234", Attempts: 1}, nil)
	f.subs.On("Save", ctx, mock.AnythingOfType("*efactura.Submission")).Return(nil)

	resp, err := f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, "processing", resp.Status)
	assert.Equal(t, "5001234", resp.UploadIndex)
	assert.Equal(t, 1, resp.AttemptCount)
	assert.NotNil(t, resp.SubmittedAt)

	key := fmt.Sprintf("efactura/%s/%s/%s.xml", f.companyID, inv.ID, resp.ID)
	xml, err := f.files.Download(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, string(xml), "<cbc:ID>DI-000007</cbc:ID>")

	claimed, err := f.claims.IsProcessed(ctx, "efactura:upload:"+inv.ID.String())
	require.NoError(t, err)
	assert.True(t, claimed)
	// Approved invoices cannot move back to submitted.
	assert.Equal(t, invoice.StatusApproved, inv.Status)
	f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestEFacturaService_SubmitDraftNeedsForce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000008", invoice.StatusDraft)

	_, err := f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID})
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))

	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(nil, shared.ErrNotFound)
	f.gateway.On("Upload", ctx, "18547290", mock.Anything).Return(&anaf.UploadResult{UploadIndex: "5001235"}, nil)
	f.subs.On("Save", ctx, mock.Anything).Return(nil)
	f.invoices.On("SaveWithLock", ctx, inv).Return(nil)

	resp, err := f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID, Force: true})
	require.NoError(t, err)
	assert.Equal(t, "processing", resp.Status)
	assert.Equal(t, invoice.StatusSubmitted, inv.Status)
}

func TestEFacturaService_SubmitSkipsInFlight(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000009", invoice.StatusApproved)
	existing := f.processing(t, inv, "5001111")

	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(existing, nil)

	resp, err := f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)
	assert.Equal(t, "5001111", resp.UploadIndex)
	f.gateway.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestEFacturaService_SubmitRejectsReceivedInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv, err := invoice.NewInvoice(f.tenantID, f.companyID, invoice.TypeReceived, "F", "F-1",
		fixedNow, invoice.Partner{Name: "Furnizor SRL"})
	require.NoError(t, err)
	f.invoices.On("FindByID", ctx, f.tenantID, f.companyID, inv.ID).Return(inv, nil)

	_, err = f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID, Force: true})
	assert.Equal(t, "INVALID_INVOICE", shared.ErrorCode(err))
}

func TestEFacturaService_SubmitConcurrentClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000010", invoice.StatusApproved)
	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(nil, shared.ErrNotFound)

	ok, err := f.claims.MarkProcessed(ctx, "efactura:upload:"+inv.ID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID})
	assert.Equal(t, "UPLOAD_IN_PROGRESS", shared.ErrorCode(err))
	f.gateway.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

type recordingUploads struct {
	results []string
}

func (r *recordingUploads) RecordEFacturaUpload(_ context.Context, _ uuid.UUID, result string) {
	r.results = append(r.results, result)
}

func TestEFacturaService_UploadFailureSchedulesRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uploads := &recordingUploads{}
	f.svc.SetUploadRecorder(uploads)
	inv := f.invoiceIn(t, "DI-000011", invoice.StatusApproved)

	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(nil, shared.ErrNotFound)
	f.gateway.On("Upload", ctx, "18547290", mock.Anything).Return(nil, fmt.Errorf("%w: HTTP 503", anaf.ErrUnavailable))
	f.subs.On("Save", ctx, mock.Anything).Return(nil)

	resp, err := f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.ErrorMessage, "service unavailable")
	require.NotNil(t, resp.NextAttemptAt)
	assert.Equal(t, fixedNow.Add(time.Minute), *resp.NextAttemptAt)

	claimed, err := f.claims.IsProcessed(ctx, "efactura:upload:"+inv.ID.String())
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, []string{"failed"}, uploads.results)
}

func TestEFacturaService_RejectedUploadWaitsForCorrection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000012", invoice.StatusApproved)

	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(nil, shared.ErrNotFound)
	f.gateway.On("Upload", ctx, "18547290", mock.Anything).Return(nil, fmt.Errorf("%w: E001 CUI invalid", anaf.ErrUploadRejected))
	f.subs.On("Save", ctx, mock.Anything).Return(nil)

	resp, err := f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.Nil(t, resp.NextAttemptAt)
}

// failed returns a submission read back in error after a failed upload.
func (f *fixture) failed(t *testing.T, inv *invoice.Invoice) *efactura.Submission {
	t.Helper()
	sub, err := efactura.NewSubmission(f.tenantID, f.companyID, inv.ID, inv.Number)
	require.NoError(t, err)
	require.NoError(t, sub.BeginAttempt())
	require.NoError(t, sub.MarkFailed("anaf: service unavailable", nil))
	sub.ClearDomainEvents()
	sub.MarkStored()
	return sub
}

func TestEFacturaService_AcceptedUploadOverwritesConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uploads := &recordingUploads{}
	f.svc.SetUploadRecorder(uploads)
	inv := f.invoiceIn(t, "DI-000021", invoice.StatusApproved)
	latest := f.failed(t, inv)

	stored, err := efactura.NewSubmission(f.tenantID, f.companyID, inv.ID, inv.Number)
	require.NoError(t, err)
	for i := 0; i < 11; i++ {
		stored.IncrementVersion()
	}
	stored.MarkStored()

	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(latest, nil)
	f.gateway.On("Upload", ctx, "18547290", mock.Anything).Return(&anaf.UploadResult{UploadIndex: "5007000"}, nil)
	f.subs.On("SaveWithLock", ctx, latest).
		Return(shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The submission has been modified by another transaction")).Once()
	f.subs.On("FindByID", mock.Anything, f.tenantID, f.companyID, latest.ID).Return(stored, nil)
	f.subs.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(s *efactura.Submission) bool {
		return s.StoredVersion() == 12 && s.Version > 12 && s.UploadIndex == "5007000"
	})).Return(nil).Once()

	resp, err := f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, "processing", resp.Status)
	assert.Equal(t, "5007000", resp.UploadIndex)
	assert.Equal(t, 2, resp.AttemptCount)
	assert.Equal(t, []string{"accepted"}, uploads.results)
	f.subs.AssertExpectations(t)
}

func TestEFacturaService_UnrecordedUploadKeepsClaimAndLogsIndex(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	f.svc = NewEFacturaService(config.EFacturaConfig{}, f.subs, f.invoices, f.companies, f.gateway, f.files, f.claims, zap.New(core))
	f.svc.now = func() time.Time { return fixedNow }
	uploads := &recordingUploads{}
	f.svc.SetUploadRecorder(uploads)
	inv := f.invoiceIn(t, "DI-000022", invoice.StatusApproved)

	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(nil, shared.ErrNotFound)
	f.gateway.On("Upload", ctx, "18547290", mock.Anything).Return(&anaf.UploadResult{UploadIndex: "5008000"}, nil)
	f.subs.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection reset by peer"))

	_, err := f.svc.Submit(ctx, f.tenantID, f.companyID, SubmitRequest{InvoiceID: inv.ID})
	require.Error(t, err)
	f.subs.AssertNumberOfCalls(t, "Save", recordAttempts)

	claimed, err := f.claims.IsProcessed(ctx, "efactura:upload:"+inv.ID.String())
	require.NoError(t, err)
	assert.True(t, claimed, "ANAF holds the document, so the claim must stay")

	entries := logs.FilterMessage("e-Factura upload accepted by ANAF but not recorded").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "5008000", fields["upload_index"])
	assert.Equal(t, inv.ID.String(), fields["invoice_id"])
	assert.Equal(t, []string{"unrecorded"}, uploads.results)
}

func TestEFacturaService_BatchStopsOnFirstFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	missing := uuid.New()
	inv := f.invoiceIn(t, "DI-000013", invoice.StatusApproved)
	f.invoices.On("FindByID", ctx, f.tenantID, f.companyID, missing).Return(nil, shared.ErrNotFound)

	stop := false
	result, err := f.svc.Batch(ctx, f.tenantID, f.companyID, BatchSubmitRequest{
		InvoiceIDs:      []uuid.UUID{missing, inv.ID, missing},
		ContinueOnError: &stop,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Success)
	require.Len(t, result.Results, 2)
	assert.False(t, result.Results[0].Success)
	assert.True(t, result.Results[1].Skipped)
	f.gateway.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestEFacturaService_BatchContinuesByDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	missing := uuid.New()
	inv := f.invoiceIn(t, "DI-000014", invoice.StatusApproved)
	f.invoices.On("FindByID", ctx, f.tenantID, f.companyID, missing).Return(nil, shared.ErrNotFound)
	f.subs.On("FindLatestByInvoice", ctx, f.tenantID, f.companyID, inv.ID).Return(nil, shared.ErrNotFound)
	f.gateway.On("Upload", ctx, "18547290", mock.Anything).Return(&anaf.UploadResult{UploadIndex: "5002000"}, nil)
	f.subs.On("Save", ctx, mock.Anything).Return(nil)

	result, err := f.svc.Batch(ctx, f.tenantID, f.companyID, BatchSubmitRequest{InvoiceIDs: []uuid.UUID{missing, inv.ID}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "5002000", result.Results[1].UploadIndex)
	assert.NotNil(t, result.Results[1].SubmissionID)
}

func TestEFacturaService_CheckAccepted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000015", invoice.StatusApproved)
	sub := f.processing(t, inv, "5003000")

	f.subs.On("FindByID", ctx, f.tenantID, f.companyID, sub.ID).Return(sub, nil)
	f.gateway.On("Status", ctx, "5003000").Return(&anaf.StatusResult{State: "ok", DownloadID: "3001"}, nil)
	f.subs.On("SaveWithLock", ctx, sub).Return(nil)

	resp, err := f.svc.Check(ctx, f.tenantID, f.companyID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, "3001", resp.DownloadID)
	assert.NotNil(t, resp.ValidatedAt)

	_, err = f.svc.Check(ctx, f.tenantID, f.companyID, sub.ID)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
	f.gateway.AssertNumberOfCalls(t, "Status", 1)
}

func TestEFacturaService_Sync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000016", invoice.StatusApproved)
	subs := []efactura.Submission{
		*f.processing(t, inv, "1"),
		*f.processing(t, inv, "2"),
		*f.processing(t, inv, "3"),
	}

	f.subs.On("FindProcessing", ctx, f.tenantID, f.companyID, defaultSyncBatch).Return(subs, nil)
	f.gateway.On("Status", ctx, "1").Return(&anaf.StatusResult{State: "nok", Message: "E: CUI cumparator invalid"}, nil)
	f.gateway.On("Status", ctx, "2").Return(&anaf.StatusResult{State: "in prelucrare"}, nil)
	f.gateway.On("Status", ctx, "3").Return(nil, errors.New("timeout"))
	f.subs.On("SaveWithLock", ctx, mock.Anything).Return(nil)

	result, err := f.svc.Sync(ctx, f.tenantID, f.companyID)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Total: 3, Synced: 2, Updated: 1}, *result)
	f.subs.AssertNumberOfCalls(t, "SaveWithLock", 2)
}

func TestEFacturaService_SyncTenant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	otherCompany := uuid.New()

	f.subs.On("FindCompaniesWithProcessing", ctx, f.tenantID).Return([]uuid.UUID{f.companyID, otherCompany}, nil)
	f.subs.On("FindProcessing", ctx, f.tenantID, f.companyID, defaultSyncBatch).Return([]efactura.Submission{}, nil)
	f.subs.On("FindProcessing", ctx, f.tenantID, otherCompany, defaultSyncBatch).Return([]efactura.Submission(nil), errors.New("db down"))

	result, err := f.svc.SyncTenant(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}

func TestEFacturaService_RetryDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000017", invoice.StatusApproved)

	sub, err := efactura.NewSubmission(f.tenantID, f.companyID, inv.ID, inv.Number)
	require.NoError(t, err)
	require.NoError(t, sub.BeginAttempt())
	due := fixedNow.Add(-time.Second)
	require.NoError(t, sub.MarkFailed("anaf: service unavailable", &due))

	f.subs.On("FindDueForRetry", ctx, f.tenantID, fixedNow, maxAutoAttempts, retryBatch).Return([]efactura.Submission{*sub}, nil)
	f.gateway.On("Upload", ctx, "18547290", mock.Anything).Return(&anaf.UploadResult{UploadIndex: "5004000"}, nil)
	f.subs.On("SaveWithLock", ctx, mock.MatchedBy(func(s *efactura.Submission) bool {
		return s.Status == efactura.StatusProcessing && s.AttemptCount == 2
	})).Return(nil)

	uploaded, err := f.svc.RetryDue(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, uploaded)
	f.subs.AssertExpectations(t)
}

func TestEFacturaService_Analytics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	since := fixedNow.AddDate(0, 0, -30)

	f.subs.On("Stats", ctx, f.tenantID, f.companyID, since).Return(&efactura.Stats{
		Total: 7, Accepted: 5, Rejected: 1, Errors: 1, AvgAttempts: 1.2857,
	}, nil)

	resp, err := f.svc.Analytics(ctx, f.tenantID, f.companyID, AnalyticsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 71.43, resp.SuccessRate)
	assert.Equal(t, 1.29, resp.AvgAttempts)

	f.subs.On("Stats", ctx, f.tenantID, f.companyID, fixedNow.AddDate(0, 0, -7)).Return(&efactura.Stats{}, nil)
	resp, err = f.svc.Analytics(ctx, f.tenantID, f.companyID, AnalyticsFilter{Days: 7})
	require.NoError(t, err)
	assert.Zero(t, resp.SuccessRate)
}

func TestEFacturaService_XMLURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.invoiceIn(t, "DI-000018", invoice.StatusApproved)
	sub := f.processing(t, inv, "5005000")
	noXML := f.processing(t, inv, "5005001")
	sub.XMLObjectKey = "efactura/x.xml"

	f.subs.On("FindByID", ctx, f.tenantID, f.companyID, sub.ID).Return(sub, nil)
	f.subs.On("FindByID", ctx, f.tenantID, f.companyID, noXML.ID).Return(noXML, nil)

	resp, err := f.svc.XMLURL(ctx, f.tenantID, f.companyID, sub.ID)
	require.NoError(t, err)
	assert.Contains(t, resp.URL, "efactura")
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	_, err = f.svc.XMLURL(ctx, f.tenantID, f.companyID, noXML.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEFacturaService_ListRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.List(context.Background(), f.tenantID, f.companyID, SubmissionListFilter{Status: "done"})
	assert.Equal(t, "INVALID_STATUS", shared.ErrorCode(err))
}

package dataexchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/scheduler"
	"github.com/documentiulia/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockExportJobRepository struct {
	mock.Mock
}

func (m *MockExportJobRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*dataexchange.ExportJob, error) {
	args := m.Called(ctx, tenantID, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataexchange.ExportJob), args.Error(1)
}

func (m *MockExportJobRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]dataexchange.ExportJob, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).([]dataexchange.ExportJob), args.Error(1)
}

func (m *MockExportJobRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExportJobRepository) FindPending(ctx context.Context, olderThan time.Time, limit int) ([]dataexchange.ExportJob, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Get(0).([]dataexchange.ExportJob), args.Error(1)
}

func (m *MockExportJobRepository) Save(ctx context.Context, job *dataexchange.ExportJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockExportJobRepository) SaveWithLock(ctx context.Context, job *dataexchange.ExportJob) error {
	return m.Called(ctx, job).Error(0)
}

type MockExportQueue struct {
	mock.Mock
}

func (m *MockExportQueue) EnqueueExport(ctx context.Context, tenantID, companyID, exportID uuid.UUID) error {
	return m.Called(ctx, tenantID, companyID, exportID).Error(0)
}

// staticSource serves fixed rows and records the filters it was given.
type staticSource struct {
	header  []string
	rows    [][]string
	err     error
	filters map[string]string
	pages   int
}

func (s *staticSource) Header() []string { return s.header }

func (s *staticSource) Page(_ context.Context, _, _ uuid.UUID, filters map[string]string, page, size int) ([][]string, error) {
	s.pages++
	s.filters = filters
	if s.err != nil {
		return nil, s.err
	}
	start := (page - 1) * size
	if start >= len(s.rows) {
		return nil, nil
	}
	end := min(start+size, len(s.rows))
	return s.rows[start:end], nil
}

func newExportJob(t *testing.T, format dataexchange.Format) *dataexchange.ExportJob {
	t.Helper()
	job, err := dataexchange.NewExportJob(uuid.New(), uuid.New(), dataexchange.EntityClients, format, map[string]string{"status": "active"})
	require.NoError(t, err)
	return job
}

func TestExportService_CreateEnqueues(t *testing.T) {
	ctx := context.Background()
	tenantID, companyID, userID := uuid.New(), uuid.New(), uuid.New()
	repo := new(MockExportJobRepository)
	queue := new(MockExportQueue)
	svc := NewExportService(repo, queue, storage.NewMemoryStorage(""), zaptest.NewLogger(t))

	repo.On("Save", ctx, mock.AnythingOfType("*dataexchange.ExportJob")).Return(nil)
	queue.On("EnqueueExport", ctx, tenantID, companyID, mock.AnythingOfType("uuid.UUID")).Return(nil)

	resp, err := svc.Create(ctx, tenantID, companyID, &userID, CreateExportRequest{
		Entity:  "invoices",
		Filters: map[string]string{"status": "paid", "from_date": "2026-01-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "csv", resp.Format)
	queue.AssertExpectations(t)
}

func TestExportService_CreateSurvivesFullQueue(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExportJobRepository)
	queue := new(MockExportQueue)
	svc := NewExportService(repo, queue, storage.NewMemoryStorage(""), nil)

	repo.On("Save", ctx, mock.Anything).Return(nil)
	queue.On("EnqueueExport", ctx, mock.Anything, mock.Anything, mock.Anything).Return(scheduler.ErrJobQueueFull)

	resp, err := svc.Create(ctx, uuid.New(), uuid.New(), nil, CreateExportRequest{Entity: "products", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
}

func TestExportService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateExportRequest
		code string
	}{
		{"entity", CreateExportRequest{Entity: "receipts"}, "INVALID_ENTITY"},
		{"format", CreateExportRequest{Entity: "clients", Format: "xml"}, "INVALID_FORMAT"},
		{"unknown filter", CreateExportRequest{Entity: "clients", Filters: map[string]string{"department": "IT"}}, "INVALID_FILTER"},
		{"bad date", CreateExportRequest{Entity: "invoices", Filters: map[string]string{"to_date": "31.12.2026"}}, "INVALID_FILTER"},
		{"bad uuid", CreateExportRequest{Entity: "projects", Filters: map[string]string{"client_id": "x"}}, "INVALID_FILTER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockExportJobRepository)
			svc := NewExportService(repo, new(MockExportQueue), storage.NewMemoryStorage(""), nil)
			_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), nil, tt.req)
			assert.Equal(t, tt.code, shared.ErrorCode(err))
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestExportService_CancelAndDownload(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExportJobRepository)
	files := storage.NewMemoryStorage("")
	svc := NewExportService(repo, new(MockExportQueue), files, nil)
	job := newExportJob(t, dataexchange.FormatCSV)

	repo.On("FindByID", ctx, job.TenantID, job.CompanyID, job.ID).Return(job, nil)
	repo.On("SaveWithLock", ctx, job).Return(nil)

	_, err := svc.Download(ctx, job.TenantID, job.CompanyID, job.ID)
	assert.Equal(t, "EXPORT_NOT_READY", shared.ErrorCode(err))

	resp, err := svc.Cancel(ctx, job.TenantID, job.CompanyID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)

	_, err = svc.Cancel(ctx, job.TenantID, job.CompanyID, job.ID)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
}

func TestExportService_PendingExports(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExportJobRepository)
	svc := NewExportService(repo, new(MockExportQueue), storage.NewMemoryStorage(""), nil)
	job := newExportJob(t, dataexchange.FormatCSV)
	cutoff := time.Now().Add(-2 * time.Minute)

	repo.On("FindPending", ctx, cutoff, 10).Return([]dataexchange.ExportJob{*job}, nil)

	pending, err := svc.PendingExports(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, scheduler.PendingExport{TenantID: job.TenantID, CompanyID: job.CompanyID, ExportID: job.ID}, pending[0])
}

func exportSchedulerJob(job *dataexchange.ExportJob) *scheduler.Job {
	j := scheduler.NewJob(scheduler.JobKindExport, job.TenantID)
	j.CompanyID = job.CompanyID
	j.RefID = job.ID
	return j
}

func TestExportExecutor_WritesCSVAcrossPages(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExportJobRepository)
	files := storage.NewMemoryStorage("")
	source := &staticSource{
		header: []string{"name", "cui"},
		rows:   [][]string{{"Alfa SRL", "14399840"}, {"Beta, Gama SA", "18547290"}, {"Ion Popescu", ""}},
	}
	exec := NewExportExecutor(repo, files, map[dataexchange.Entity]RowSource{dataexchange.EntityClients: source}, nil)
	exec.pageSize = 2
	job := newExportJob(t, dataexchange.FormatCSV)

	repo.On("FindByID", ctx, job.TenantID, job.CompanyID, job.ID).Return(job, nil)
	repo.On("SaveWithLock", mock.Anything, job).Return(nil)

	require.NoError(t, exec.Handle(ctx, exportSchedulerJob(job)))
	assert.Equal(t, dataexchange.JobStatusCompleted, job.Status)
	assert.Equal(t, 3, job.RowCount)
	assert.Equal(t, 2, source.pages)
	assert.Equal(t, "active", source.filters["status"])

	data, err := files.Download(ctx, job.ObjectKey)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Equal(t, "name,cui\nAlfa SRL,14399840\n\"Beta, Gama SA\",18547290\nIon Popescu,\n", string(data[len(utf8BOM):]))
	assert.Equal(t, "text/csv; charset=utf-8", files.ContentType(job.ObjectKey))
}

func TestExportExecutor_WritesJSON(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExportJobRepository)
	files := storage.NewMemoryStorage("")
	source := &staticSource{header: []string{"code", "name"}, rows: [][]string{{"P-1", "Hârtie A4"}}}
	exec := NewExportExecutor(repo, files, map[dataexchange.Entity]RowSource{dataexchange.EntityClients: source}, nil)
	job := newExportJob(t, dataexchange.FormatJSON)

	repo.On("FindByID", ctx, job.TenantID, job.CompanyID, job.ID).Return(job, nil)
	repo.On("SaveWithLock", mock.Anything, job).Return(nil)

	require.NoError(t, exec.Handle(ctx, exportSchedulerJob(job)))

	data, err := files.Download(ctx, job.ObjectKey)
	require.NoError(t, err)
	var records []map[string]string
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Equal(t, []map[string]string{{"code": "P-1", "name": "Hârtie A4"}}, records)
}

func TestExportExecutor_SkipsClaimedJobs(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExportJobRepository)
	source := &staticSource{header: []string{"name"}}
	exec := NewExportExecutor(repo, storage.NewMemoryStorage(""), map[dataexchange.Entity]RowSource{dataexchange.EntityClients: source}, nil)
	job := newExportJob(t, dataexchange.FormatCSV)

	repo.On("FindByID", ctx, job.TenantID, job.CompanyID, job.ID).Return(job, nil)
	repo.On("SaveWithLock", ctx, job).Return(shared.ErrConcurrencyConflict).Once()

	require.NoError(t, exec.Handle(ctx, exportSchedulerJob(job)))
	assert.Zero(t, source.pages)

	// A job that is no longer pending is not touched at all.
	require.NoError(t, exec.Handle(ctx, exportSchedulerJob(job)))
	repo.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestExportExecutor_RecordsFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExportJobRepository)
	source := &staticSource{header: []string{"name"}, err: errors.New("connection reset")}
	exec := NewExportExecutor(repo, storage.NewMemoryStorage(""), map[dataexchange.Entity]RowSource{dataexchange.EntityClients: source}, nil)
	job := newExportJob(t, dataexchange.FormatCSV)

	repo.On("FindByID", ctx, job.TenantID, job.CompanyID, job.ID).Return(job, nil)
	repo.On("SaveWithLock", mock.Anything, job).Return(nil)

	err := exec.Handle(ctx, exportSchedulerJob(job))
	require.Error(t, err)
	assert.Equal(t, dataexchange.JobStatusFailed, job.Status)
	assert.Equal(t, "connection reset", job.Error)
	repo.AssertNumberOfCalls(t, "SaveWithLock", 2)
}

func TestExportExecutor_MissingJobIsIgnored(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExportJobRepository)
	exec := NewExportExecutor(repo, storage.NewMemoryStorage(""), nil, nil)
	job := newExportJob(t, dataexchange.FormatCSV)

	repo.On("FindByID", ctx, job.TenantID, job.CompanyID, job.ID).Return(nil, shared.ErrNotFound)

	assert.NoError(t, exec.Handle(ctx, exportSchedulerJob(job)))
}

package dataexchange

import (
	"context"
	"strings"
	"testing"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockImportJobRepository struct {
	mock.Mock
}

func (m *MockImportJobRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*dataexchange.ImportJob, error) {
	args := m.Called(ctx, tenantID, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataexchange.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]dataexchange.ImportJob, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).([]dataexchange.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImportJobRepository) Save(ctx context.Context, job *dataexchange.ImportJob) error {
	return m.Called(ctx, job).Error(0)
}

type MockClientStore struct {
	mock.Mock
}

func (m *MockClientStore) FindByCUI(ctx context.Context, tenantID, companyID uuid.UUID, cui string) (*client.Client, error) {
	args := m.Called(ctx, tenantID, companyID, cui)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientStore) Save(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientStore) SaveWithLock(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) FindByCode(ctx context.Context, tenantID, companyID uuid.UUID, code string) (*inventory.Product, error) {
	args := m.Called(ctx, tenantID, companyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

func (m *MockProductStore) Save(ctx context.Context, p *inventory.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductStore) SaveWithLock(ctx context.Context, p *inventory.Product) error {
	return m.Called(ctx, p).Error(0)
}

type importFixture struct {
	imports   *MockImportJobRepository
	clients   *MockClientStore
	products  *MockProductStore
	svc       *ImportService
	tenantID  uuid.UUID
	companyID uuid.UUID
}

func newImportFixture() *importFixture {
	f := &importFixture{
		imports:   new(MockImportJobRepository),
		clients:   new(MockClientStore),
		products:  new(MockProductStore),
		tenantID:  uuid.New(),
		companyID: uuid.New(),
	}
	f.imports.On("Save", mock.Anything, mock.AnythingOfType("*dataexchange.ImportJob")).Return(nil)
	f.svc = NewImportService(f.imports, f.clients, f.products, nil)
	return f
}

func (f *importFixture) run(t *testing.T, entity, mode, csv string) *ImportJobResponse {
	t.Helper()
	resp, err := f.svc.Import(context.Background(), f.tenantID, f.companyID, nil,
		ImportRequest{Entity: entity, ConflictMode: mode}, entity+".csv", int64(len(csv)), strings.NewReader(csv))
	require.NoError(t, err)
	return resp
}

const clientsCSV = "\xEF\xBB\xBFNume;CUI;Email;Oras\n" +
	"Alfa SRL;RO14399840;office@alfa.ro;Cluj-Napoca\n" +
	"Beta SA;18547290;contact@beta.ro;Iasi\n" +
	";;\n" +
	"Ion Popescu;;ion@example.ro;Brasov\n"

func TestImportService_ClientsWithRomanianHeadersFail(t *testing.T) {
	f := newImportFixture()

	// Headers must use the column names; "nume" is not "name".
	resp := f.run(t, "clients", "", clientsCSV)
	assert.Equal(t, "failed", resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "name")
}

func TestImportService_ClientsSkipExisting(t *testing.T) {
	f := newImportFixture()
	existing, err := client.NewClient(f.tenantID, f.companyID, "Beta SA", client.TypeCompany, "18547290")
	require.NoError(t, err)

	f.clients.On("FindByCUI", mock.Anything, f.tenantID, f.companyID, "14399840").Return(nil, shared.ErrNotFound)
	f.clients.On("FindByCUI", mock.Anything, f.tenantID, f.companyID, "18547290").Return(existing, nil)
	f.clients.On("Save", mock.Anything, mock.AnythingOfType("*client.Client")).Return(nil)

	csv := "name;cui;email;city\n" +
		"Alfa SRL;RO14399840;office@alfa.ro;Cluj-Napoca\n" +
		"Beta SA;18547290;contact@beta.ro;Iasi\n" +
		";;;\n" +
		"Ion Popescu;;ion@example.ro;Brasov\n"
	resp := f.run(t, "clients", "skip", csv)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 3, resp.TotalRows)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	assert.Empty(t, resp.Errors)
	f.clients.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.clients.AssertNumberOfCalls(t, "Save", 2)
}

func TestImportService_ClientsUpdateExisting(t *testing.T) {
	f := newImportFixture()
	existing, err := client.NewClient(f.tenantID, f.companyID, "Beta SA", client.TypeCompany, "18547290")
	require.NoError(t, err)

	f.clients.On("FindByCUI", mock.Anything, f.tenantID, f.companyID, "18547290").Return(existing, nil)
	f.clients.On("SaveWithLock", mock.Anything, existing).Return(nil)

	resp := f.run(t, "clients", "update", "name,cui,city\nBeta Group SA,18547290,Timisoara\n")
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, "Beta Group SA", existing.Name)
	assert.Equal(t, "Timisoara", existing.City)
	assert.InDelta(t, 100.0, resp.SuccessRate, 0.001)
}

func TestImportService_ClientsFailModeRecordsRowError(t *testing.T) {
	f := newImportFixture()
	existing, err := client.NewClient(f.tenantID, f.companyID, "Beta SA", client.TypeCompany, "18547290")
	require.NoError(t, err)

	f.clients.On("FindByCUI", mock.Anything, f.tenantID, f.companyID, "18547290").Return(existing, nil)

	resp := f.run(t, "clients", "fail", "name,cui\nBeta SA,18547290\n")
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 2, resp.Errors[0].Row)
	assert.Equal(t, "Client with CUI 18547290 already exists", resp.Errors[0].Message)
}

func TestImportService_ClientRowValidation(t *testing.T) {
	f := newImportFixture()
	f.clients.On("FindByCUI", mock.Anything, f.tenantID, f.companyID, "14399840").Return(nil, shared.ErrNotFound)
	f.clients.On("Save", mock.Anything, mock.Anything).Return(nil)

	csv := "name,cui,email,type\n" +
		"Alfa SRL,14399840,office@alfa.ro,company\n" +
		"Bad CUI SRL,12345,,company\n" +
		"Dup SRL,RO14399840,,company\n" +
		",,not-an-email,partner\n"
	resp := f.run(t, "clients", "skip", csv)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 4, resp.TotalRows)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 3, resp.Failed)

	fields := map[int][]string{}
	for _, e := range resp.Errors {
		fields[e.Row] = append(fields[e.Row], e.Field)
	}
	assert.Equal(t, []string{"cui"}, fields[3])
	assert.Equal(t, []string{"cui"}, fields[4])
	assert.ElementsMatch(t, []string{"name", "email", "type"}, fields[5])
}

func TestImportService_Products(t *testing.T) {
	f := newImportFixture()
	existing, err := inventory.NewProduct(f.tenantID, f.companyID, "HA4", inventory.ProductDetails{Name: "Hârtie A4", VATRate: decimal.NewFromInt(21)})
	require.NoError(t, err)

	f.products.On("FindByCode", mock.Anything, f.tenantID, f.companyID, "HA4").Return(existing, nil)
	f.products.On("FindByCode", mock.Anything, f.tenantID, f.companyID, "TON-01").Return(nil, shared.ErrNotFound)
	f.products.On("SaveWithLock", mock.Anything, existing).Return(nil)
	f.products.On("Save", mock.Anything, mock.AnythingOfType("*inventory.Product")).Return(nil)

	csv := "code;name;unit;sale_price;vat_rate;min_stock\n" +
		"ha4;Hârtie A4 80g;top;24,50;21;10\n" +
		"ton-01;Toner negru;buc;310;19;2\n" +
		"X1;Capsator;buc;15;7;0\n"
	resp := f.run(t, "products", "update", csv)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 1, resp.Imported)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "vat_rate", resp.Errors[0].Field)
	assert.Equal(t, "Hârtie A4 80g", existing.Name)
	assert.True(t, decimal.RequireFromString("24.5").Equal(existing.SalePrice))
}

func TestImportService_FileProblemsFailTheJob(t *testing.T) {
	tests := []struct {
		name    string
		entity  string
		csv     string
		message string
	}{
		{"empty", "clients", "", "empty"},
		{"invalid utf8", "clients", "name\n\xff\xfe\n", "UTF-8"},
		{"missing columns", "products", "code\nP1\n", "missing required columns: name"},
		{"no rows", "clients", "name,cui\n\n", "no data rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture()
			resp := f.run(t, tt.entity, "", tt.csv)
			assert.Equal(t, "failed", resp.Status)
			require.NotEmpty(t, resp.Errors)
			assert.Contains(t, resp.Errors[0].Message, tt.message)
			f.imports.AssertNumberOfCalls(t, "Save", 1)
		})
	}
}

func TestImportService_RejectsUnknownEntity(t *testing.T) {
	f := newImportFixture()
	_, err := f.svc.Import(context.Background(), f.tenantID, f.companyID, nil,
		ImportRequest{Entity: "invoices"}, "x.csv", 1, strings.NewReader("a"))
	assert.Equal(t, "INVALID_ENTITY", shared.ErrorCode(err))
}

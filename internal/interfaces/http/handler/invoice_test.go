package handler

import (
	"context"
	"net/http"
	"testing"

	appinvoice "github.com/documentiulia/backend/internal/application/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/interfaces/http/dto"
	"github.com/documentiulia/backend/internal/interfaces/http/middleware"
	"github.com/documentiulia/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	middleware.SetupValidator()
}

// MockInvoiceService implements InvoiceService for testing
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) invoice(args mock.Arguments) (*appinvoice.InvoiceResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoice.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) Create(ctx context.Context, tenantID, companyID uuid.UUID, req appinvoice.CreateInvoiceRequest) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, companyID, req))
}

func (m *MockInvoiceService) GetByID(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, companyID, invoiceID))
}

func (m *MockInvoiceService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter appinvoice.InvoiceListFilter) ([]appinvoice.InvoiceListResponse, int64, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).([]appinvoice.InvoiceListResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceService) Update(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req appinvoice.UpdateInvoiceRequest) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, companyID, invoiceID, req))
}

func (m *MockInvoiceService) Delete(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) error {
	return m.Called(ctx, tenantID, companyID, invoiceID).Error(0)
}

func (m *MockInvoiceService) SubmitForApproval(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, companyID, invoiceID))
}

func (m *MockInvoiceService) Approve(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, companyID, invoiceID))
}

func (m *MockInvoiceService) MarkPaid(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req appinvoice.MarkPaidRequest) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, companyID, invoiceID, req))
}

func (m *MockInvoiceService) Cancel(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req appinvoice.CancelRequest) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, companyID, invoiceID, req))
}

func (m *MockInvoiceService) AvailableTransitions(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.TransitionsResponse, error) {
	args := m.Called(ctx, tenantID, companyID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoice.TransitionsResponse), args.Error(1)
}

func (m *MockInvoiceService) Summary(ctx context.Context, tenantID, companyID uuid.UUID, filter appinvoice.SummaryFilter) (*appinvoice.SummaryResponse, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoice.SummaryResponse), args.Error(1)
}

func (m *MockInvoiceService) Overdue(ctx context.Context, tenantID, companyID uuid.UUID) ([]appinvoice.InvoiceListResponse, error) {
	args := m.Called(ctx, tenantID, companyID)
	return args.Get(0).([]appinvoice.InvoiceListResponse), args.Error(1)
}

func (m *MockInvoiceService) PDF(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, tenantID, companyID, invoiceID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockInvoiceService) BulkStatus(ctx context.Context, tenantID, companyID uuid.UUID, req appinvoice.BulkStatusRequest) (*appinvoice.BulkResult, error) {
	args := m.Called(ctx, tenantID, companyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoice.BulkResult), args.Error(1)
}

func (m *MockInvoiceService) BulkDelete(ctx context.Context, tenantID, companyID uuid.UUID, req appinvoice.BulkDeleteRequest) (*appinvoice.BulkResult, error) {
	args := m.Called(ctx, tenantID, companyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoice.BulkResult), args.Error(1)
}

func setupInvoiceRouter(service InvoiceService) *gin.Engine {
	owner := testutil.Owner()
	router := testutil.NewRouter(&owner)
	h := NewInvoiceHandler(service)

	group := testutil.CompanyGroup(router)
	group.POST("/invoices", h.Create)
	group.GET("/invoices/:id", h.Get)
	group.POST("/invoices/:id/pay", h.MarkPaid)
	group.POST("/invoices/:id/approve", h.Approve)
	group.GET("/invoices/:id/pdf", h.PDF)
	group.POST("/invoices/bulk/status", h.BulkStatus)
	return router
}

func validInvoiceBody() map[string]any {
	return map[string]any{
		"issue_date":   "2025-03-01",
		"partner_name": "Client Test SRL",
		"lines": []map[string]any{
			{"description": "Servicii contabilitate", "quantity": "1", "unit_price": "1000", "vat_rate": "19"},
		},
	}
}

func TestInvoiceHandler_Create(t *testing.T) {
	service := new(MockInvoiceService)
	router := setupInvoiceRouter(service)

	invoiceID := uuid.New()
	service.On("Create", mock.Anything, testutil.TestTenantID(), testutil.TestCompanyID(),
		mock.MatchedBy(func(req appinvoice.CreateInvoiceRequest) bool {
			return req.CreatedBy != nil && *req.CreatedBy == testutil.TestUserID() &&
				len(req.Lines) == 1 && req.Lines[0].VATRate.Equal(decimal.NewFromInt(19))
		})).
		Return(&appinvoice.InvoiceResponse{ID: invoiceID, Status: "draft", GrossAmount: decimal.NewFromInt(1190)}, nil)

	rec := testutil.DoJSON(t, router, http.MethodPost, testutil.CompanyPath("/invoices"), validInvoiceBody())

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := testutil.DecodeData[appinvoice.InvoiceResponse](t, rec)
	assert.Equal(t, invoiceID, inv.ID)
	assert.True(t, inv.GrossAmount.Equal(decimal.NewFromInt(1190)))
	service.AssertExpectations(t)
}

func TestInvoiceHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(body map[string]any)
		field  string
	}{
		{"missing issue date", func(b map[string]any) { delete(b, "issue_date") }, "issue_date"},
		{"no lines", func(b map[string]any) { b["lines"] = []map[string]any{} }, "lines"},
		{"bad vat rate", func(b map[string]any) {
			b["lines"] = []map[string]any{{"description": "x", "quantity": "1", "unit_price": "10", "vat_rate": "7"}}
		}, "lines[0].vat_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockInvoiceService)
			router := setupInvoiceRouter(service)

			body := validInvoiceBody()
			tt.mutate(body)
			rec := testutil.DoJSON(t, router, http.MethodPost, testutil.CompanyPath("/invoices"), body)

			info := testutil.AssertError(t, rec, http.StatusBadRequest, dto.ErrCodeValidation)
			fields := make([]string, 0, len(info.Details))
			for _, d := range info.Details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tt.field)
			service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceHandler_Get(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		service := new(MockInvoiceService)
		router := setupInvoiceRouter(service)
		id := uuid.New()
		service.On("GetByID", mock.Anything, testutil.TestTenantID(), testutil.TestCompanyID(), id).
			Return(nil, shared.ErrNotFound)

		rec := testutil.DoJSON(t, router, http.MethodGet, testutil.CompanyPath("/invoices/"+id.String()), nil)
		testutil.AssertError(t, rec, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		service := new(MockInvoiceService)
		router := setupInvoiceRouter(service)

		rec := testutil.DoJSON(t, router, http.MethodGet, testutil.CompanyPath("/invoices/not-a-uuid"), nil)
		info := testutil.AssertError(t, rec, http.StatusBadRequest, dto.ErrCodeValidation)
		require.Len(t, info.Details, 1)
		assert.Equal(t, "id", info.Details[0].Field)
		service.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvoiceHandler_MarkPaid_OptionalBody(t *testing.T) {
	service := new(MockInvoiceService)
	router := setupInvoiceRouter(service)
	id := uuid.New()

	service.On("MarkPaid", mock.Anything, testutil.TestTenantID(), testutil.TestCompanyID(), id, appinvoice.MarkPaidRequest{}).
		Return(&appinvoice.InvoiceResponse{ID: id, Status: "paid"}, nil).Once()
	service.On("MarkPaid", mock.Anything, testutil.TestTenantID(), testutil.TestCompanyID(), id, appinvoice.MarkPaidRequest{PaidAt: "2025-03-10"}).
		Return(&appinvoice.InvoiceResponse{ID: id, Status: "paid"}, nil).Once()

	path := testutil.CompanyPath("/invoices/" + id.String() + "/pay")
	rec := testutil.DoJSON(t, router, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = testutil.DoJSON(t, router, http.MethodPost, path, map[string]string{"paid_at": "2025-03-10"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	service.AssertExpectations(t)
}

func TestInvoiceHandler_Approve_InvalidTransition(t *testing.T) {
	service := new(MockInvoiceService)
	router := setupInvoiceRouter(service)
	id := uuid.New()
	service.On("Approve", mock.Anything, testutil.TestTenantID(), testutil.TestCompanyID(), id).
		Return(nil, shared.NewDomainError("INVALID_TRANSITION", "Cannot move invoice from draft to approved"))

	rec := testutil.DoJSON(t, router, http.MethodPost, testutil.CompanyPath("/invoices/"+id.String()+"/approve"), nil)

	info := testutil.AssertError(t, rec, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	require.Len(t, info.Details, 1)
	assert.Equal(t, "INVALID_TRANSITION", info.Details[0].Code)
}

func TestInvoiceHandler_PDF(t *testing.T) {
	service := new(MockInvoiceService)
	router := setupInvoiceRouter(service)
	id := uuid.New()
	pdf := []byte("%PDF-1.7 test")
	service.On("PDF", mock.Anything, testutil.TestTenantID(), testutil.TestCompanyID(), id).
		Return(pdf, "FACT-0001.pdf", nil)

	rec := testutil.DoJSON(t, router, http.MethodGet, testutil.CompanyPath("/invoices/"+id.String()+"/pdf"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="FACT-0001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, pdf, rec.Body.Bytes())
}

func TestInvoiceHandler_BulkStatus(t *testing.T) {
	service := new(MockInvoiceService)
	router := setupInvoiceRouter(service)

	ok, bad := uuid.New(), uuid.New()
	service.On("BulkStatus", mock.Anything, testutil.TestTenantID(), testutil.TestCompanyID(),
		mock.MatchedBy(func(req appinvoice.BulkStatusRequest) bool {
			return req.Status == "approved" && len(req.IDs) == 2
		})).
		Return(&appinvoice.BulkResult{
			Success: []appinvoice.BulkSuccessItem{{ID: ok, PreviousStatus: "submitted", NewStatus: "approved"}},
			Failed:  []appinvoice.BulkFailedItem{{ID: bad, ErrorCode: "INVALID_TRANSITION", Error: "draft cannot be approved"}},
			Summary: appinvoice.BulkSummary{Total: 2, Updated: 1, Failed: 1},
		}, nil)

	rec := testutil.DoJSON(t, router, http.MethodPost, testutil.CompanyPath("/invoices/bulk/status"),
		map[string]any{"ids": []uuid.UUID{ok, bad}, "status": "approved"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := testutil.DecodeData[appinvoice.BulkResult](t, rec)
	assert.Equal(t, result.Summary.Total, result.Summary.Updated+result.Summary.Failed)
	assert.Len(t, result.Failed, 1)
}

func TestInvoiceHandler_BulkStatus_RejectsUnknownStatus(t *testing.T) {
	service := new(MockInvoiceService)
	router := setupInvoiceRouter(service)

	rec := testutil.DoJSON(t, router, http.MethodPost, testutil.CompanyPath("/invoices/bulk/status"),
		map[string]any{"ids": []uuid.UUID{uuid.New()}, "status": "draft"})

	testutil.AssertError(t, rec, http.StatusBadRequest, dto.ErrCodeValidation)
}

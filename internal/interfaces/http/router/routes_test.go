package router

import (
	"context"
	"net/http"
	"testing"

	"github.com/documentiulia/backend/internal/domain/identity"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/interfaces/http/handler"
	"github.com/documentiulia/backend/internal/interfaces/http/middleware"
	"github.com/documentiulia/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	middleware.SetupValidator()
}

type onlyCompany struct{ id uuid.UUID }

func (o onlyCompany) Exists(_ context.Context, _, companyID uuid.UUID) error {
	if companyID != o.id {
		return shared.ErrNotFound
	}
	return nil
}

// Handlers built without services: the tests below stop in middleware or
// binding before a service would be reached.
func testHandlers() Handlers {
	return Handlers{
		Auth:          handler.NewAuthHandler(nil),
		Company:       handler.NewCompanyHandler(nil),
		Client:        handler.NewClientHandler(nil),
		Project:       handler.NewProjectHandler(nil),
		Invoice:       handler.NewInvoiceHandler(nil),
		EFactura:      handler.NewEFacturaHandler(nil),
		Inventory:     handler.NewInventoryHandler(nil),
		PurchaseOrder: handler.NewPurchaseOrderHandler(nil),
		HR:            handler.NewHRHandler(nil, nil),
		Receipt:       handler.NewReceiptHandler(nil),
		Content:       handler.NewContentHandler(nil, nil, uuid.Nil),
		DataExchange:  handler.NewDataExchangeHandler(nil, nil),
		Onboarding:    handler.NewOnboardingHandler(nil),
		System:        handler.NewSystemHandler("test", nil),
	}
}

func apiEngine(p *testutil.Principal) *gin.Engine {
	engine := testutil.NewRouter(p)
	RegisterAPI(NewRouter(engine), testHandlers(), onlyCompany{id: testutil.TestCompanyID()}).Setup()
	return engine
}

func TestAPIGroups_MountsEveryArea(t *testing.T) {
	engine := apiEngine(nil)

	registered := make(map[string]bool)
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/v1/auth/login",
		"POST /api/v1/users/:id/unlock",
		"GET /api/v1/companies",
		"DELETE /api/v1/companies/:companyId",
		"GET /api/v1/companies/:companyId/invoices/summary",
		"POST /api/v1/companies/:companyId/invoices/:id/pay",
		"POST /api/v1/companies/:companyId/efactura/submissions/batch",
		"GET /api/v1/companies/:companyId/inventory/products/low-stock",
		"POST /api/v1/companies/:companyId/purchase-orders/:id/receive",
		"POST /api/v1/companies/:companyId/payroll/:id/pay",
		"POST /api/v1/companies/:companyId/receipts/:id/upload",
		"GET /api/v1/companies/:companyId/exports/:id/download",
		"POST /api/v1/companies/:companyId/imports",
		"POST /api/v1/forum/posts/:postId/accept",
		"GET /api/v1/blog/:slug",
		"POST /api/v1/admin/blog/posts/:id/publish",
		"POST /api/v1/onboarding/steps/:step/skip",
		"GET /api/v1/system/ping",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestAPIGroups_RouteListIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, g := range APIGroups(testHandlers(), onlyCompany{}) {
		for _, r := range g.Routes() {
			key := r.Method + " " + r.Path
			assert.False(t, seen[key], "duplicate route %s", key)
			seen[key] = true
		}
	}
}

func TestAPIGroups_Permissions(t *testing.T) {
	employee := testutil.As(identity.RoleEmployee)
	accountant := testutil.As(identity.RoleAccountant)
	owner := testutil.Owner()

	tests := []struct {
		name      string
		principal testutil.Principal
		method    string
		path      string
		status    int
	}{
		{"employee cannot read HR", employee, http.MethodGet, testutil.CompanyPath("/employees"), http.StatusForbidden},
		{"employee cannot write invoices", employee, http.MethodPost, testutil.CompanyPath("/invoices"), http.StatusForbidden},
		{"accountant cannot touch procurement", accountant, http.MethodGet, testutil.CompanyPath("/purchase-orders"), http.StatusForbidden},
		{"accountant cannot create users", accountant, http.MethodPost, "/api/v1/users", http.StatusForbidden},
		{"employee cannot create forum categories", employee, http.MethodPost, "/api/v1/forum/categories", http.StatusForbidden},
		{"owner reaches user binding", owner, http.MethodPost, "/api/v1/users", http.StatusBadRequest},
		{"owner reaches invoice binding", owner, http.MethodPost, testutil.CompanyPath("/invoices"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := apiEngine(&tt.principal)
			rec := testutil.DoJSON(t, engine, tt.method, tt.path, map[string]any{})
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAPIGroups_CompanyOutsideTenantIsNotFound(t *testing.T) {
	owner := testutil.Owner()
	engine := apiEngine(&owner)

	rec := testutil.DoJSON(t, engine, http.MethodGet, "/api/v1/companies/"+uuid.NewString()+"/invoices", nil)
	testutil.AssertError(t, rec, http.StatusNotFound, "ERR_NOT_FOUND")

	rec = testutil.DoJSON(t, engine, http.MethodGet, "/api/v1/companies/not-a-uuid/invoices", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIGroups_SystemPing(t *testing.T) {
	engine := apiEngine(nil)

	rec := testutil.DoJSON(t, engine, http.MethodGet, "/api/v1/system/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

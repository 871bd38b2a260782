package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	clientapp "github.com/documentiulia/backend/internal/application/client"
	companyapp "github.com/documentiulia/backend/internal/application/company"
	identityapp "github.com/documentiulia/backend/internal/application/identity"
	inventoryapp "github.com/documentiulia/backend/internal/application/inventory"
	invoiceapp "github.com/documentiulia/backend/internal/application/invoice"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/documentiulia/backend/internal/infrastructure/auth"
	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/documentiulia/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gofakeit.Seed(42)
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// fixedRates answers every BNR lookup with the same rate.
type fixedRates struct{ rate decimal.Decimal }

func (f fixedRates) Rate(context.Context, valueobject.Currency, time.Time) (decimal.Decimal, error) {
	return f.rate, nil
}

// Stack wires the application services on the real repositories, the way
// cmd/server does, minus the HTTP layer.
type Stack struct {
	DB        *TestDB
	Auth      *identityapp.AuthService
	Companies *companyapp.CompanyService
	Clients   *clientapp.ClientService
	Invoices  *invoiceapp.InvoiceService
	Inventory *inventoryapp.InventoryService
	Blacklist *auth.InMemoryTokenBlacklist
}

func newStack(t *testing.T) *Stack {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	db := tdb.DB
	log := zap.NewNop()

	tenantRepo := persistence.NewGormTenantRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	companyRepo := persistence.NewGormCompanyRepository(db)
	clientRepo := persistence.NewGormClientRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-with-enough-bytes",
		Issuer:                 "documentiulia-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	return &Stack{
		DB: tdb,
		Auth: identityapp.NewAuthService(tenantRepo, userRepo, persistence.NewGormRegistration(db),
			jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log),
		Companies: companyapp.NewCompanyService(companyRepo, invoiceRepo),
		Clients:   clientapp.NewClientService(clientRepo),
		Invoices: invoiceapp.NewInvoiceService(invoiceRepo, clientRepo, companyRepo,
			fixedRates{rate: decimal.RequireFromString("4.9750")}, log),
		Inventory: inventoryapp.NewInventoryService(persistence.NewGormProductRepository(db),
			persistence.NewGormStockMovementRepository(db), persistence.NewGormStockLedger(db), log),
		Blacklist: blacklist,
	}
}

// registerAccount signs up a new tenant and returns the owner's tokens.
func (s *Stack) registerAccount(t *testing.T, password string) (*identityapp.TokenResponse, identityapp.RegisterRequest) {
	t.Helper()

	req := identityapp.RegisterRequest{
		AccountName: gofakeit.Company(),
		Username:    fakeUsername(),
		Email:       uuid.NewString()[:8] + "." + gofakeit.Email(),
		Password:    password,
		DisplayName: gofakeit.Name(),
	}
	resp, err := s.Auth.Register(context.Background(), req)
	require.NoError(t, err)
	return resp, req
}

// newCompany creates a company with the n-th fixture CUI under tenantID.
func (s *Stack) newCompany(t *testing.T, tenantID uuid.UUID, n int) *companyapp.CompanyResponse {
	t.Helper()

	resp, err := s.Companies.Create(context.Background(), tenantID, companyapp.CreateCompanyRequest{
		Name:     gofakeit.Company() + " SRL",
		CUI:      validCUIs[n%len(validCUIs)],
		City:     gofakeit.City(),
		VATPayer: true,
	})
	require.NoError(t, err)
	return resp
}

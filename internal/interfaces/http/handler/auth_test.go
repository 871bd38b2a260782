package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	appidentity "github.com/documentiulia/backend/internal/application/identity"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/interfaces/http/dto"
	"github.com/documentiulia/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService implements AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) tokens(args mock.Arguments) (*appidentity.TokenResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.TokenResponse), args.Error(1)
}

func (m *MockAuthService) user(args mock.Arguments) (*appidentity.UserResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserResponse), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req appidentity.RegisterRequest) (*appidentity.TokenResponse, error) {
	return m.tokens(m.Called(ctx, req))
}

func (m *MockAuthService) Login(ctx context.Context, req appidentity.LoginRequest) (*appidentity.TokenResponse, error) {
	return m.tokens(m.Called(ctx, req))
}

func (m *MockAuthService) Refresh(ctx context.Context, req appidentity.RefreshRequest) (*appidentity.TokenResponse, error) {
	return m.tokens(m.Called(ctx, req))
}

func (m *MockAuthService) Logout(ctx context.Context, req appidentity.LogoutRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*appidentity.UserResponse, error) {
	return m.user(m.Called(ctx, tenantID, userID))
}

func (m *MockAuthService) ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, req appidentity.ChangePasswordRequest) error {
	return m.Called(ctx, tenantID, userID, req).Error(0)
}

func (m *MockAuthService) CreateUser(ctx context.Context, tenantID uuid.UUID, createdBy uuid.UUID, req appidentity.CreateUserRequest) (*appidentity.UserResponse, error) {
	return m.user(m.Called(ctx, tenantID, createdBy, req))
}

func (m *MockAuthService) Unlock(ctx context.Context, tenantID, userID uuid.UUID) (*appidentity.UserResponse, error) {
	return m.user(m.Called(ctx, tenantID, userID))
}

func setupAuthRouter(service AuthService, p *testutil.Principal) *gin.Engine {
	router := testutil.NewRouter(p)
	h := NewAuthHandler(service)

	api := router.Group("/api/v1")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.RefreshToken)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.GetCurrentUser)
	api.PUT("/auth/password", h.ChangePassword)
	api.POST("/users", h.CreateUser)
	api.POST("/users/:id/unlock", h.UnlockUser)
	return router
}

func testTokenResponse() *appidentity.TokenResponse {
	return &appidentity.TokenResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		User: appidentity.UserResponse{
			ID:       testutil.TestUserID(),
			TenantID: testutil.TestTenantID(),
			Username: "ana.pop",
			Role:     "owner",
		},
	}
}

func TestAuthHandler_Register(t *testing.T) {
	service := new(MockAuthService)
	router := setupAuthRouter(service, nil)

	body := map[string]string{
		"account_name": "Contabilitate Pop SRL",
		"username":     "ana.pop",
		"email":        "ana@example.ro",
		"password":     "parola-sigura-1",
	}
	service.On("Register", mock.Anything, mock.MatchedBy(func(req appidentity.RegisterRequest) bool {
		return req.Username == "ana.pop" && req.AccountName == "Contabilitate Pop SRL"
	})).Return(testTokenResponse(), nil)

	rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/register", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tokens := testutil.DecodeData[appidentity.TokenResponse](t, rec)
	assert.Equal(t, "access", tokens.AccessToken)
	assert.Equal(t, "owner", tokens.User.Role)
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	service := new(MockAuthService)
	router := setupAuthRouter(service, nil)
	service.On("Register", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered"))

	rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"account_name": "X", "username": "ana.pop", "email": "ana@example.ro", "password": "parola-sigura-1",
	})
	testutil.AssertError(t, rec, http.StatusConflict, dto.ErrCodeAlreadyExists)
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("passes the client ip", func(t *testing.T) {
		service := new(MockAuthService)
		router := setupAuthRouter(service, nil)
		service.On("Login", mock.Anything, mock.MatchedBy(func(req appidentity.LoginRequest) bool {
			return req.Login == "ana.pop" && req.IP != ""
		})).Return(testTokenResponse(), nil)

		rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/login",
			map[string]string{"login": "ana.pop", "password": "parola-sigura-1"})

		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		service.AssertExpectations(t)
	})

	t.Run("bad credentials", func(t *testing.T) {
		service := new(MockAuthService)
		router := setupAuthRouter(service, nil)
		service.On("Login", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password"))

		rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/login",
			map[string]string{"login": "ana.pop", "password": "wrong"})
		testutil.AssertError(t, rec, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	})

	t.Run("locked account", func(t *testing.T) {
		service := new(MockAuthService)
		router := setupAuthRouter(service, nil)
		service.On("Login", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked"))

		rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/login",
			map[string]string{"login": "ana.pop", "password": "wrong"})
		testutil.AssertError(t, rec, http.StatusForbidden, "ACCOUNT_LOCKED")
	})

	t.Run("missing password", func(t *testing.T) {
		service := new(MockAuthService)
		router := setupAuthRouter(service, nil)

		rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{"login": "ana.pop"})
		testutil.AssertError(t, rec, http.StatusBadRequest, dto.ErrCodeValidation)
		service.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Refresh_Expired(t *testing.T) {
	service := new(MockAuthService)
	router := setupAuthRouter(service, nil)
	service.On("Refresh", mock.Anything, appidentity.RefreshRequest{RefreshToken: "old"}).
		Return(nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired"))

	rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": "old"})
	testutil.AssertError(t, rec, http.StatusUnauthorized, dto.ErrCodeTokenExpired)
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the presented token", func(t *testing.T) {
		owner := testutil.Owner()
		service := new(MockAuthService)
		router := setupAuthRouter(service, &owner)
		service.On("Logout", mock.Anything, mock.MatchedBy(func(req appidentity.LogoutRequest) bool {
			return req.TokenJTI != "" && req.UserID == owner.UserID && req.TenantID == owner.TenantID && req.TokenTTL >= 0
		})).Return(nil)

		rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/logout", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		msg := testutil.DecodeData[MessageResponse](t, rec)
		assert.Equal(t, "Logged out successfully", msg.Message)
		service.AssertExpectations(t)
	})

	t.Run("anonymous", func(t *testing.T) {
		service := new(MockAuthService)
		router := setupAuthRouter(service, nil)

		rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/auth/logout", nil)
		testutil.AssertError(t, rec, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	owner := testutil.Owner()
	service := new(MockAuthService)
	router := setupAuthRouter(service, &owner)
	lastLogin := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	service.On("Me", mock.Anything, owner.TenantID, owner.UserID).
		Return(&appidentity.UserResponse{ID: owner.UserID, Username: "ana.pop", LastLoginAt: &lastLogin}, nil)

	rec := testutil.DoJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	user := testutil.DecodeData[appidentity.UserResponse](t, rec)
	assert.Equal(t, "ana.pop", user.Username)
	require.NotNil(t, user.LastLoginAt)
	assert.True(t, lastLogin.Equal(*user.LastLoginAt))
}

func TestAuthHandler_CreateUser(t *testing.T) {
	owner := testutil.Owner()
	service := new(MockAuthService)
	router := setupAuthRouter(service, &owner)

	service.On("CreateUser", mock.Anything, owner.TenantID, owner.UserID, mock.MatchedBy(func(req appidentity.CreateUserRequest) bool {
		return req.Role == "accountant"
	})).Return(&appidentity.UserResponse{ID: uuid.New(), Role: "accountant"}, nil)

	rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/users", map[string]string{
		"username": "ion.contabil", "email": "ion@example.ro", "password": "parola-sigura-2", "role": "accountant",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = testutil.DoJSON(t, router, http.MethodPost, "/api/v1/users", map[string]string{
		"username": "ion.contabil", "email": "ion@example.ro", "password": "parola-sigura-2", "role": "admin",
	})
	testutil.AssertError(t, rec, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestAuthHandler_UnlockUser(t *testing.T) {
	owner := testutil.Owner()
	service := new(MockAuthService)
	router := setupAuthRouter(service, &owner)
	target := uuid.New()
	service.On("Unlock", mock.Anything, owner.TenantID, target).
		Return(&appidentity.UserResponse{ID: target, Status: "active"}, nil)

	rec := testutil.DoJSON(t, router, http.MethodPost, "/api/v1/users/"+target.String()+"/unlock", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := testutil.DecodeData[appidentity.UserResponse](t, rec)
	assert.Equal(t, "active", user.Status)
}

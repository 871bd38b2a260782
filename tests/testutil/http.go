package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/documentiulia/backend/internal/domain/identity"
	"github.com/documentiulia/backend/internal/infrastructure/auth"
	"github.com/documentiulia/backend/internal/interfaces/http/dto"
	"github.com/documentiulia/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Principal is the caller a test router authenticates every request as.
type Principal struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	Role        identity.Role
	Permissions []string
}

// Owner returns the standard test tenant owner with every permission.
func Owner() Principal {
	return As(identity.RoleOwner)
}

// As returns the standard test user with the permissions of role.
func As(role identity.Role) Principal {
	return Principal{
		TenantID:    TestTenantID(),
		UserID:      TestUserID(),
		Role:        role,
		Permissions: role.Permissions(),
	}
}

// Authenticate stands in for the JWT middleware.
func Authenticate(p Principal) gin.HandlerFunc {
	claims := &auth.Claims{
		TenantID:    p.TenantID.String(),
		UserID:      p.UserID.String(),
		Username:    "test.user",
		Role:        string(p.Role),
		Permissions: p.Permissions,
		TokenType:   auth.TokenTypeAccess,
	}
	claims.ID = uuid.NewString()
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Set(middleware.JWTTenantIDKey, claims.TenantID)
		c.Set(middleware.JWTUsernameKey, claims.Username)
		c.Set(middleware.JWTRoleKey, claims.Role)
		c.Set(middleware.JWTPermissions, claims.Permissions)
		c.Next()
	}
}

// AnyCompany resolves every company id, for handler tests that do not
// exercise tenant isolation.
type AnyCompany struct{}

func (AnyCompany) Exists(context.Context, uuid.UUID, uuid.UUID) error { return nil }

// NewRouter returns an engine that assigns request ids and authenticates as p.
// Pass nil for p to leave requests anonymous.
func NewRouter(p *Principal) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	if p != nil {
		router.Use(Authenticate(*p))
	}
	return router
}

// CompanyGroup mounts /api/v1/companies/:companyId behind the company scope.
func CompanyGroup(router *gin.Engine) *gin.RouterGroup {
	return router.Group("/api/v1/companies/:companyId", middleware.CompanyScope(AnyCompany{}))
}

// CompanyPath joins suffix to the company-scoped prefix of the test company.
func CompanyPath(suffix string) string {
	return "/api/v1/companies/" + TestCompanyID().String() + suffix
}

// DoJSON serves one request; body is marshalled to JSON unless nil.
func DoJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// DoMultipart posts one file under field plus the given form values.
func DoMultipart(t *testing.T, router http.Handler, path, field, fileName string, content []byte, values map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	if field != "" {
		part, err := w.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// Envelope is the response envelope with data left raw for DecodeData.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "Failed to parse response: %s", rec.Body.String())
	return env
}

// DecodeData asserts a success envelope and decodes its data.
func DecodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	env := DecodeEnvelope(t, rec)
	require.True(t, env.Success, "Expected success, got %s", rec.Body.String())

	var data T
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

// AssertError checks status and error code and returns the error body.
func AssertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()
	assert.Equal(t, status, rec.Code, "Unexpected status: %s", rec.Body.String())

	env := DecodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code)
	assert.NotEmpty(t, env.Error.RequestID)
	return env.Error
}

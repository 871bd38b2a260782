package identity

import (
	"testing"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(uuid.New(), "Maria.Ionescu", "Maria@Example.ro", "parola123", RoleAccountant)
	require.NoError(t, err)
	assert.Equal(t, "maria.ionescu", u.Username)
	assert.Equal(t, "maria@example.ro", u.Email)
	assert.True(t, u.VerifyPassword("parola123"))
	assert.False(t, u.VerifyPassword("parola124"))
	assert.True(t, u.CanLogin())

	tests := []struct {
		name, username, email, password string
		role                            Role
		code                            string
	}{
		{"short username", "ab", "a@b.ro", "parola123", RoleOwner, "INVALID_USERNAME"},
		{"bad email", "abc", "nope", "parola123", RoleOwner, "INVALID_EMAIL"},
		{"weak password", "abc", "a@b.ro", "parola", RoleOwner, "INVALID_PASSWORD"},
		{"no digit", "abc", "a@b.ro", "parolaparola", RoleOwner, "INVALID_PASSWORD"},
		{"unknown role", "abc", "a@b.ro", "parola123", "admin", "INVALID_ROLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(uuid.New(), tt.username, tt.email, tt.password, tt.role)
			assert.Equal(t, tt.code, shared.ErrorCode(err))
		})
	}
}

func TestRole_Permissions(t *testing.T) {
	assert.Equal(t, AllPermissions(), RoleOwner.Permissions())

	acc := RoleAccountant.Permissions()
	assert.True(t, HasPermission(acc, PermInvoiceWrite))
	assert.True(t, HasPermission(acc, PermEFacturaSubmit))
	assert.True(t, HasPermission(acc, PermExportWrite))
	assert.False(t, HasPermission(acc, PermHRWrite))

	emp := RoleEmployee.Permissions()
	assert.True(t, HasPermission(emp, PermReceiptWrite))
	assert.True(t, HasPermission(emp, PermInvoiceRead))
	assert.False(t, HasPermission(emp, PermInvoiceWrite))
}

func TestUser_LoginFailuresLock(t *testing.T) {
	u, err := NewUser(uuid.New(), "ion", "ion@example.ro", "parola123", RoleEmployee)
	require.NoError(t, err)

	assert.False(t, u.RecordLoginFailure(3))
	assert.False(t, u.RecordLoginFailure(3))
	assert.True(t, u.RecordLoginFailure(3))
	assert.False(t, u.CanLogin())

	require.NoError(t, u.Unlock())
	assert.Equal(t, 0, u.FailedAttempts)
	assert.Equal(t, "NOT_LOCKED", shared.ErrorCode(u.Unlock()))
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser(uuid.New(), "ion", "ion@example.ro", "parola123", RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, "INVALID_PASSWORD", shared.ErrorCode(u.ChangePassword("wrong", "parolanoua1")))
	require.NoError(t, u.ChangePassword("parola123", "parolanoua1"))
	assert.True(t, u.VerifyPassword("parolanoua1"))
}

func TestNewTenant(t *testing.T) {
	tn, err := NewTenant(" Cabinet Contabil ")
	require.NoError(t, err)
	assert.Equal(t, "Cabinet Contabil", tn.Name)
	assert.True(t, tn.IsActive())
	_, err = NewTenant("")
	assert.Equal(t, "INVALID_TENANT_NAME", shared.ErrorCode(err))
}

package integration

import (
	"context"
	"strings"
	"testing"

	identityapp "github.com/documentiulia/backend/internal/application/identity"
	"github.com/documentiulia/backend/internal/domain/identity"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Secret123!"

func TestAuth_RegisterAndLogin(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registered, req := s.registerAccount(t, testPassword)
	assert.Equal(t, string(identity.RoleOwner), registered.User.Role)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, int64(1), s.DB.CountRows("users", registered.User.TenantID))

	t.Run("login by username", func(t *testing.T) {
		resp, err := s.Auth.Login(ctx, identityapp.LoginRequest{Login: req.Username, Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, resp.User.ID)
	})

	t.Run("login by email is case insensitive", func(t *testing.T) {
		resp, err := s.Auth.Login(ctx, identityapp.LoginRequest{Login: strings.ToUpper(req.Email), Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, registered.User.TenantID, resp.User.TenantID)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := req
		dup.Username = fakeUsername()
		_, err := s.Auth.Register(ctx, dup)
		assert.Equal(t, "ALREADY_EXISTS", shared.ErrorCode(err))
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		dup := req
		dup.Email = "other." + req.Email
		_, err := s.Auth.Register(ctx, dup)
		assert.Equal(t, "ALREADY_EXISTS", shared.ErrorCode(err))
	})
}

func TestAuth_RefreshTokenCannotBeReplayed(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registered, _ := s.registerAccount(t, testPassword)

	rotated, err := s.Auth.Refresh(ctx, identityapp.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	_, err = s.Auth.Refresh(ctx, identityapp.RefreshRequest{RefreshToken: registered.RefreshToken})
	assert.Equal(t, "TOKEN_REVOKED", shared.ErrorCode(err))

	_, err = s.Auth.Refresh(ctx, identityapp.RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.NoError(t, err)
}

func TestAuth_LockoutAfterRepeatedFailures(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registered, req := s.registerAccount(t, testPassword)
	maxAttempts := identityapp.DefaultAuthServiceConfig().MaxLoginAttempts

	for i := 1; i < maxAttempts; i++ {
		_, err := s.Auth.Login(ctx, identityapp.LoginRequest{Login: req.Username, Password: "Wrong1234"})
		require.Equal(t, "INVALID_CREDENTIALS", shared.ErrorCode(err), "attempt %d", i)
	}
	_, err := s.Auth.Login(ctx, identityapp.LoginRequest{Login: req.Username, Password: "Wrong1234"})
	assert.Equal(t, "ACCOUNT_LOCKED", shared.ErrorCode(err))

	// The right password no longer helps until the owner unlocks the account.
	_, err = s.Auth.Login(ctx, identityapp.LoginRequest{Login: req.Username, Password: testPassword})
	assert.Equal(t, "ACCOUNT_LOCKED", shared.ErrorCode(err))

	_, err = s.Auth.Unlock(ctx, registered.User.TenantID, registered.User.ID)
	require.NoError(t, err)
	_, err = s.Auth.Login(ctx, identityapp.LoginRequest{Login: req.Username, Password: testPassword})
	assert.NoError(t, err)
}

func TestAuth_SuspendedTenantCannotLogin(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registered, req := s.registerAccount(t, testPassword)
	s.DB.SuspendTenant(registered.User.TenantID)

	_, err := s.Auth.Login(ctx, identityapp.LoginRequest{Login: req.Username, Password: testPassword})
	assert.Equal(t, "ACCOUNT_SUSPENDED", shared.ErrorCode(err))

	_, err = s.Auth.Refresh(ctx, identityapp.RefreshRequest{RefreshToken: registered.RefreshToken})
	assert.Equal(t, "ACCOUNT_SUSPENDED", shared.ErrorCode(err))
}

func TestAuth_OwnerCreatesStaff(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	owner, _ := s.registerAccount(t, testPassword)
	username := fakeUsername()

	staff, err := s.Auth.CreateUser(ctx, owner.User.TenantID, owner.User.ID, identityapp.CreateUserRequest{
		Username: username,
		Email:    username + "@example.ro",
		Password: testPassword,
		Role:     string(identity.RoleAccountant),
	})
	require.NoError(t, err)
	assert.Equal(t, owner.User.TenantID, staff.TenantID)

	resp, err := s.Auth.Login(ctx, identityapp.LoginRequest{Login: username, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, string(identity.RoleAccountant), resp.User.Role)
	assert.NotContains(t, resp.User.Permissions, identity.PermHRRead)
}

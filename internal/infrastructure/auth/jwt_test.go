package auth

import (
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		Issuer:                 "documentiulia-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
	})
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "contabil",
		Role:        "accountant",
		Permissions: []string{"invoice:read", "invoice:write", "efactura:submit"},
	}
}

func TestNewJWTService_RefreshSecretFallback(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "only-one-secret"})
	assert.Equal(t, []byte("only-one-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, input.TenantID, claims.TenantUUID())
	assert.Equal(t, input.UserID, claims.UserUUID())
	assert.Equal(t, "accountant", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.HasPermission("efactura:submit"))
	assert.False(t, claims.HasPermission("hr:write"))
	assert.True(t, claims.HasAnyPermission("hr:write", "invoice:read"))

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Permissions)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestGenerateTokenPair_RequiresIdentity(t *testing.T) {
	svc := newTestJWTService()

	input := newTestInput()
	input.TenantID = uuid.Nil
	_, err := svc.GenerateTokenPair(input)
	assert.ErrorIs(t, err, ErrMissingTenantID)

	input = newTestInput()
	input.UserID = uuid.Nil
	_, err = svc.GenerateTokenPair(input)
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestValidate_Errors(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	tests := []struct {
		name     string
		validate func() error
		want     error
	}{
		{"garbage", func() error { _, err := svc.ValidateAccessToken("not.a.token"); return err }, ErrInvalidToken},
		{"refresh used as access", func() error { _, err := svc.ValidateAccessToken(pair.RefreshToken); return err }, ErrInvalidToken},
		{"access used as refresh", func() error { _, err := svc.ValidateRefreshToken(pair.AccessToken); return err }, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.validate(), tt.want)
		})
	}
}

func TestValidate_WrongTypeSameSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "shared-secret-for-both-token-types",
		Issuer:                 "documentiulia-test",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
	})
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidate_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_RejectsOtherIssuerAndAlgorithm(t *testing.T) {
	svc := newTestJWTService()

	foreign := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "someone-else",
		AccessTokenExpiration: time.Minute,
	})
	pair, err := foreign.GenerateTokenPair(newTestInput())
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{TokenType: TokenTypeAccess})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_RemainingTTL(t *testing.T) {
	c := &Claims{}
	assert.Zero(t, c.RemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Zero(t, c.RemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(10 * time.Minute))
	assert.InDelta(t, (10 * time.Minute).Seconds(), c.RemainingTTL().Seconds(), 2)
}

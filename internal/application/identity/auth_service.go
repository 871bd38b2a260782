package identity

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/domain/identity"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int // failed logins before the account is locked
}

func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{MaxLoginAttempts: 5}
}

// TokenIssuer is the part of auth.JWTService the use cases need.
type TokenIssuer interface {
	GenerateTokenPair(input auth.GenerateTokenInput) (*auth.TokenPair, error)
	ValidateRefreshToken(tokenString string) (*auth.Claims, error)
}

// AuthService handles registration and the token lifecycle
type AuthService struct {
	tenants        identity.TenantRepository
	users          identity.UserRepository
	registration   identity.Registration
	tokens         TokenIssuer
	blacklist      auth.TokenBlacklist
	config         AuthServiceConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewAuthService(
	tenants identity.TenantRepository,
	users identity.UserRepository,
	registration identity.Registration,
	tokens TokenIssuer,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tenants:      tenants,
		users:        users,
		registration: registration,
		tokens:       tokens,
		blacklist:    blacklist,
		config:       config,
		logger:       logger.Named("auth"),
	}
}

func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates a tenant and its first owner, then signs the owner in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	tenant, err := identity.NewTenant(req.AccountName)
	if err != nil {
		return nil, err
	}
	owner, err := identity.NewUser(tenant.ID, req.Username, req.Email, req.Password, identity.RoleOwner)
	if err != nil {
		return nil, err
	}
	if err := owner.SetDisplayName(req.DisplayName); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, owner); err != nil {
		return nil, err
	}

	if err := s.registration.Register(ctx, tenant, owner); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, owner)

	s.logger.Info("Account registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("username", owner.Username))
	return s.issue(owner)
}

// Login authenticates by username or email and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	s.logger.Info("Login attempt", zap.String("login", req.Login))

	user, err := s.users.FindByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("login", req.Login))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
		}
		return nil, err
	}

	if !user.CanLogin() {
		s.logger.Warn("Login attempt for locked account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Ask the account owner to unlock it")
	}
	if err := s.ensureTenantActive(ctx, user.TenantID); err != nil {
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts)
		if err := s.users.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		s.publishDomainEvents(ctx, user)

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", user.FailedAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	user.RecordLoginSuccess()
	if err := s.users.Save(ctx, user); err != nil {
		// The login itself succeeded; only the bookkeeping is lost.
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
		zap.String("ip", req.IP))
	return resp, nil
}

// Refresh exchanges a refresh token for a new pair. Role and permissions are
// reloaded from the user so changes apply without a new login.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
		}
	}

	user, err := s.users.FindByID(ctx, claims.TenantUUID(), claims.UserUUID())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked")
	}
	if err := s.ensureTenantActive(ctx, user.TenantID); err != nil {
		return nil, err
	}

	// The used refresh token cannot be replayed.
	if s.blacklist != nil {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
		}
	}
	return s.issue(user)
}

// Logout revokes the access token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, req LogoutRequest) error {
	if req.TokenJTI == "" || s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, req.TokenJTI, req.TokenTTL); err != nil {
		return err
	}
	s.logger.Info("User logged out",
		zap.String("user_id", req.UserID.String()),
		zap.String("tenant_id", req.TenantID.String()))
	return nil
}

func (s *AuthService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	s.logger.Info("User password changed", zap.String("user_id", userID.String()))
	return nil
}

// CreateUser lets an owner add an accountant or employee to the account.
func (s *AuthService) CreateUser(ctx context.Context, tenantID uuid.UUID, createdBy uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	user, err := identity.NewUser(tenantID, req.Username, req.Email, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if err := user.SetDisplayName(req.DisplayName); err != nil {
		return nil, err
	}
	user.SetCreatedBy(createdBy)
	if err := s.ensureUnique(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, user)

	response := ToUserResponse(user)
	return &response, nil
}

func (s *AuthService) Unlock(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Unlock(); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// ensureUnique checks username and email; both identify a login across all tenants.
func (s *AuthService) ensureUnique(ctx context.Context, u *identity.User) error {
	exists, err := s.users.ExistsByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}
	_, err = s.users.FindByLogin(ctx, u.Username)
	switch {
	case err == nil:
		return shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	case errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *AuthService) ensureTenantActive(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !tenant.IsActive() {
		return shared.NewDomainError("ACCOUNT_SUSPENDED", "This account has been suspended")
	}
	return nil
}

func (s *AuthService) issue(u *identity.User) (*TokenResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:    u.TenantID,
		UserID:      u.ID,
		Username:    u.Username,
		Role:        string(u.Role),
		Permissions: u.Permissions(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(u),
	}, nil
}

func (s *AuthService) publishDomainEvents(ctx context.Context, u *identity.User) {
	if s.eventPublisher == nil {
		u.ClearDomainEvents()
		return
	}
	if events := u.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	u.ClearDomainEvents()
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrInvalidTokenType):
		return shared.NewDomainError("TOKEN_INVALID", "Not a refresh token")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}

package handler

import (
	"context"

	appidentity "github.com/documentiulia/backend/internal/application/identity"
	"github.com/documentiulia/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req appidentity.RegisterRequest) (*appidentity.TokenResponse, error)
	Login(ctx context.Context, req appidentity.LoginRequest) (*appidentity.TokenResponse, error)
	Refresh(ctx context.Context, req appidentity.RefreshRequest) (*appidentity.TokenResponse, error)
	Logout(ctx context.Context, req appidentity.LogoutRequest) error
	Me(ctx context.Context, tenantID, userID uuid.UUID) (*appidentity.UserResponse, error)
	ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, req appidentity.ChangePasswordRequest) error
	CreateUser(ctx context.Context, tenantID uuid.UUID, createdBy uuid.UUID, req appidentity.CreateUserRequest) (*appidentity.UserResponse, error)
	Unlock(ctx context.Context, tenantID, userID uuid.UUID) (*appidentity.UserResponse, error)
}

// MessageResponse acknowledges actions that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
// @ID           register
// @Summary      Open an account
// @Description  Creates the tenant and its owner, then signs the owner in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.RegisterRequest true "Account"
// @Success      201 {object} APIResponse[appidentity.TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req appidentity.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
// @ID           login
// @Summary      User login
// @Description  Authenticate with username or email. Five failed attempts lock the account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[appidentity.TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Refresh access token
// @Description  The presented refresh token is revoked and a new pair issued.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.RefreshRequest true "Refresh token"
// @Success      200 {object} APIResponse[appidentity.TokenResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req appidentity.RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @ID           logout
// @Summary      User logout
// @Description  Revokes the access token used for this request.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	err := h.authService.Logout(c.Request.Context(), appidentity.LogoutRequest{
		TenantID: claims.TenantUUID(),
		UserID:   claims.UserUUID(),
		TokenJTI: claims.ID,
		TokenTTL: claims.RemainingTTL(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageResponse{
		Message: "Logged out successfully",
	})
}

// GetCurrentUser godoc
// @ID           getCurrentUser
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[appidentity.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	user, err := h.authService.Me(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appidentity.ChangePasswordRequest true "Passwords"
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req appidentity.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), tenantID, userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{
		Message: "Password changed successfully",
	})
}

// CreateUser godoc
// @ID           createUser
// @Summary      Add a user to the account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appidentity.CreateUserRequest true "User"
// @Success      201 {object} APIResponse[appidentity.UserResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /users [post]
func (h *AuthHandler) CreateUser(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req appidentity.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.authService.CreateUser(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// UnlockUser godoc
// @ID           unlockUser
// @Summary      Unlock a user locked by failed logins
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} APIResponse[appidentity.UserResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id}/unlock [post]
func (h *AuthHandler) UnlockUser(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.authService.Unlock(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

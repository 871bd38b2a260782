package middleware

import (
	"net/http"
	"slices"

	"github.com/documentiulia/backend/internal/infrastructure/logger"
	"github.com/documentiulia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequirePermission lets the request through when the token grants permission
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission requires at least one of the listed permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortForbidden(c, "Authentication required")
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			logger.GetGinLogger(c).Debug("Permission denied",
				zap.String("user_id", claims.UserID),
				zap.Strings("required_any", permissions),
				zap.String("role", claims.Role))
			abortForbidden(c, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// RequireRole restricts account administration (users, unlocks) to the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil || !slices.Contains(roles, claims.Role) {
			abortForbidden(c, "This action is reserved for the account owner")
			return
		}
		c.Next()
	}
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, message, c.GetString(RequestIDKey)))
}

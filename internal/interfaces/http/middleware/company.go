package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/logger"
	"github.com/documentiulia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CompanyIDKey holds the resolved company id as a string, for logs and spans.
	CompanyIDKey = "company_id"
	// CompanyParam is the route parameter of every company-scoped route
	CompanyParam = "companyId"

	companyUUIDKey = "company_uuid"
)

// CompanyResolver checks that a company belongs to the tenant.
// *company.CompanyService satisfies it.
type CompanyResolver interface {
	Exists(ctx context.Context, tenantID, companyID uuid.UUID) error
}

// CompanyScope resolves :companyId inside the caller's tenant. A malformed id
// is a validation error; a company of another tenant is indistinguishable
// from a missing one.
func CompanyScope(resolver CompanyResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString(RequestIDKey)

		tenantID, err := uuid.Parse(GetJWTTenantID(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}

		companyID, err := uuid.Parse(c.Param(CompanyParam))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
				"Invalid company id", requestID,
				[]dto.ValidationDetail{{Field: CompanyParam, Code: "uuid", Message: "Invalid UUID format"}}))
			return
		}

		if err := resolver.Exists(c.Request.Context(), tenantID, companyID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound,
					dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Company not found", requestID))
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
			return
		}

		c.Set(CompanyIDKey, companyID.String())
		c.Set(companyUUIDKey, companyID)
		ctx, _ := logger.WithCompanyID(c.Request.Context(), logger.FromContext(c.Request.Context()), companyID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetCompanyID returns the company resolved by CompanyScope
func GetCompanyID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(companyUUIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

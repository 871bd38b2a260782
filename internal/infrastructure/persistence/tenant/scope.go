// Package tenant scopes gorm queries to a tenant and, for company-owned data, to one company.
//
// Every row of a business table carries tenant_id and most carry company_id. Repositories
// never build those conditions by hand; they go through the scopes below so that a missing
// identifier fails the query instead of widening it.
//
//	db.WithContext(ctx).Scopes(tenant.CompanyScope(tenantID, companyID)).Find(&invoices)
package tenant

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

var ErrCompanyIDRequired = errors.New("company_id is required")

var ErrInvalidTenantID = errors.New("invalid tenant_id format")

// TenantScope restricts a query to one tenant. A nil tenant ID poisons the statement.
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// CompanyScope restricts a query to one company of a tenant.
func CompanyScope(tenantID, companyID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		if companyID == uuid.Nil {
			_ = db.AddError(ErrCompanyIDRequired)
			return db
		}
		return db.Where("tenant_id = ? AND company_id = ?", tenantID, companyID)
	}
}

// TenantDB hands out tenant-scoped sessions of a shared gorm handle.
type TenantDB struct {
	db *gorm.DB
}

func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db}
}

// DB returns the unscoped handle, for system jobs that iterate over all tenants.
func (t *TenantDB) DB() *gorm.DB {
	return t.db
}

// WithContext scopes to the tenant recorded in ctx by the auth middleware.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	db := t.db.WithContext(ctx)
	raw := logger.GetTenantID(ctx)
	if raw == "" {
		_ = db.AddError(ErrTenantIDRequired)
		return db
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return db
	}
	return db.Scopes(TenantScope(tenantID))
}

func (t *TenantDB) ForTenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return t.db.WithContext(ctx).Scopes(TenantScope(tenantID))
}

func (t *TenantDB) ForCompany(ctx context.Context, tenantID, companyID uuid.UUID) *gorm.DB {
	return t.db.WithContext(ctx).Scopes(CompanyScope(tenantID, companyID))
}

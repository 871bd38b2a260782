package persistence

import (
	"context"
	"errors"

	"github.com/documentiulia/backend/internal/domain/hr"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements hr.EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

func (r *GormEmployeeRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*hr.Employee, error) {
	var model models.EmployeeModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormEmployeeRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]hr.Employee, error) {
	var employeeModels []models.EmployeeModel
	query := r.db.WithContext(ctx).Model(&models.EmployeeModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	query = paginate(r.applyFilter(query, filter), filter, EmployeeSortFields, "last_name")

	if err := query.Find(&employeeModels).Error; err != nil {
		return nil, err
	}
	return toEmployees(employeeModels), nil
}

func (r *GormEmployeeRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.EmployeeModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindActive returns everyone on payroll this month, including employees on leave
func (r *GormEmployeeRepository) FindActive(ctx context.Context, tenantID, companyID uuid.UUID) ([]hr.Employee, error) {
	var employeeModels []models.EmployeeModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("status <> ?", hr.EmployeeStatusTerminated).
		Order("last_name ASC, first_name ASC").
		Find(&employeeModels).Error; err != nil {
		return nil, err
	}
	return toEmployees(employeeModels), nil
}

func (r *GormEmployeeRepository) ExistsByCNP(ctx context.Context, tenantID, companyID uuid.UUID, cnp string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EmployeeModel{}).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("cnp = ?", cnp).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormEmployeeRepository) Save(ctx context.Context, e *hr.Employee) error {
	if err := r.db.WithContext(ctx).Save(models.EmployeeModelFromDomain(e)).Error; err != nil {
		return err
	}
	e.MarkStored()
	return nil
}

func (r *GormEmployeeRepository) SaveWithLock(ctx context.Context, e *hr.Employee) error {
	model := models.EmployeeModelFromDomain(e)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", e.ID, e.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The employee record has been modified by another transaction")
	}
	e.MarkStored()
	return nil
}

func (r *GormEmployeeRepository) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Delete(&models.EmployeeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormEmployeeRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "department":
			query = query.Where("department = ?", value)
		}
	}
	return query
}

func toEmployees(employeeModels []models.EmployeeModel) []hr.Employee {
	employees := make([]hr.Employee, len(employeeModels))
	for i := range employeeModels {
		employees[i] = *employeeModels[i].ToDomain()
	}
	return employees
}

var _ hr.EmployeeRepository = (*GormEmployeeRepository)(nil)

// GormPayrollRepository implements hr.PayrollRepository using GORM
type GormPayrollRepository struct {
	db *gorm.DB
}

func NewGormPayrollRepository(db *gorm.DB) *GormPayrollRepository {
	return &GormPayrollRepository{db: db}
}

func (r *GormPayrollRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*hr.PayrollRun, error) {
	var model models.PayrollRunModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPayrollRepository) FindByPeriod(ctx context.Context, tenantID, companyID uuid.UUID, period string) (*hr.PayrollRun, error) {
	var model models.PayrollRunModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("period = ?", period).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPayrollRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]hr.PayrollRun, error) {
	var runModels []models.PayrollRunModel
	query := r.db.WithContext(ctx).Model(&models.PayrollRunModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	query = paginate(query, filter, PayrollSortFields, "period")

	if err := query.Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]hr.PayrollRun, len(runModels))
	for i := range runModels {
		runs[i] = *runModels[i].ToDomain()
	}
	return runs, nil
}

func (r *GormPayrollRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PayrollRunModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPayrollRepository) Save(ctx context.Context, run *hr.PayrollRun) error {
	if err := r.db.WithContext(ctx).Save(models.PayrollRunModelFromDomain(run)).Error; err != nil {
		return err
	}
	run.MarkStored()
	return nil
}

func (r *GormPayrollRepository) SaveWithLock(ctx context.Context, run *hr.PayrollRun) error {
	model := models.PayrollRunModelFromDomain(run)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", run.ID, run.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The payroll run has been modified by another transaction")
	}
	run.MarkStored()
	return nil
}

var _ hr.PayrollRepository = (*GormPayrollRepository)(nil)

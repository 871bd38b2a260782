package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var openInvoiceStatuses = []invoice.Status{invoice.StatusPending, invoice.StatusSubmitted, invoice.StatusApproved}

// GormInvoiceRepository implements invoice.InvoiceRepository using GORM.
// Lines live in invoice_lines and are rewritten on every save.
type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Preload("Lines", preloadLines).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several invoices at once; unknown ids are skipped
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, tenantID, companyID uuid.UUID, ids []uuid.UUID) ([]invoice.Invoice, error) {
	if len(ids) == 0 {
		return []invoice.Invoice{}, nil
	}

	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Preload("Lines", preloadLines).
		Where("id IN ?", ids).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// FindAll lists invoices without their lines
func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]invoice.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	query = paginate(r.applyFilter(query, filter), filter, InvoiceSortFields, "issue_date")

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

func (r *GormInvoiceRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(tenant.CompanyScope(tenantID, companyID))
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) CountForCompany(ctx context.Context, tenantID, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, tenantID, companyID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextSequence reads the highest numeric suffix used in the series and adds one
func (r *GormInvoiceRepository) NextSequence(ctx context.Context, tenantID, companyID uuid.UUID, series string) (int, error) {
	var last int
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("series = ?", series).
		Select("COALESCE(MAX(CAST(SUBSTRING(number FROM '[0-9]+$') AS INTEGER)), 0)").
		Scan(&last).Error; err != nil {
		return 0, err
	}
	return last + 1, nil
}

func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, tenantID, companyID uuid.UUID, asOf time.Time, limit int) ([]invoice.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", openInvoiceStatuses, asOf).
		Order("due_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

type statusTotalsRow struct {
	Status      string
	Count       int64
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	GrossAmount decimal.Decimal
}

func (r *GormInvoiceRepository) SummarizeByStatus(ctx context.Context, tenantID, companyID uuid.UUID, from, to time.Time) ([]invoice.StatusTotals, error) {
	var rows []statusTotalsRow
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Select("status, COUNT(*) AS count, COALESCE(SUM(base_net_amount), 0) AS net_amount, " +
			"COALESCE(SUM(base_vat_amount), 0) AS vat_amount, COALESCE(SUM(base_gross_amount), 0) AS gross_amount").
		Where("issue_date >= ? AND issue_date < ?", from, to).
		Group("status").
		Order("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]invoice.StatusTotals, len(rows))
	for i, row := range rows {
		totals[i] = invoice.StatusTotals{
			Status:      invoice.Status(row.Status),
			Count:       row.Count,
			NetAmount:   row.NetAmount,
			VATAmount:   row.VATAmount,
			GrossAmount: row.GrossAmount,
		}
	}
	return totals, nil
}

// Save upserts the invoice header and replaces its lines in one transaction
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			if isUniqueViolation(err, "ux_invoices_company_number") {
				return shared.NewDomainError(invoice.ErrCodeDuplicateNumber,
					fmt.Sprintf("Invoice number %s is already used", inv.Number))
			}
			return err
		}
		return replaceInvoiceLines(tx, model)
	})
	if err != nil {
		return err
	}
	inv.MarkStored()
	return nil
}

// SaveWithLock updates the header only if the stored version is the one that was loaded
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(model).
			Where("id = ? AND version = ?", inv.ID, inv.StoredVersion()).
			Select("*").
			Omit(clause.Associations).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The invoice record has been modified by another transaction")
		}
		return replaceInvoiceLines(tx, model)
	})
	if err != nil {
		return err
	}
	inv.MarkStored()
	return nil
}

func replaceInvoiceLines(tx *gorm.DB, model *models.InvoiceModel) error {
	if err := tx.Where("invoice_id = ?", model.ID).Delete(&models.InvoiceLineModel{}).Error; err != nil {
		return err
	}
	if len(model.Lines) == 0 {
		return nil
	}
	return tx.Create(&model.Lines).Error
}

// Delete removes an invoice; lines go with it through ON DELETE CASCADE
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.CompanyScope(tenantID, companyID)).
		Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("number ILIKE ? OR partner_name ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "from_date":
			query = query.Where("issue_date >= ?", value)
		case "to_date":
			query = query.Where("issue_date <= ?", value)
		}
	}
	return query
}

func toInvoices(invoiceModels []models.InvoiceModel) []invoice.Invoice {
	invoices := make([]invoice.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices
}

var _ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)

package persistence

import (
	"strings"

	"github.com/documentiulia/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// paginate applies a whitelisted ORDER BY plus OFFSET/LIMIT. Ordering always ends on id
// so that pages are stable when the sort column has duplicates.
func paginate(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	order := field + " " + ValidateSortOrder(filter.OrderDir)
	if field != "id" {
		order += ", id " + ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(order)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

func searchPattern(search string) string {
	return "%" + strings.TrimSpace(search) + "%"
}

var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

var CompanySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"cui":        true,
	"city":       true,
	"status":     true,
}

var ClientSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"cui":        true,
	"type":       true,
	"city":       true,
	"status":     true,
}

var ProjectSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"name":                  true,
	"status":                true,
	"health_status":         true,
	"priority":              true,
	"start_date":            true,
	"end_date":              true,
	"budget":                true,
	"completion_percentage": true,
}

var InvoiceSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"number":       true,
	"issue_date":   true,
	"due_date":     true,
	"partner_name": true,
	"gross_amount": true,
	"status":       true,
}

var SubmissionSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"status":        true,
	"submitted_at":  true,
	"attempt_count": true,
}

var ProductSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"code":             true,
	"name":             true,
	"category":         true,
	"sale_price":       true,
	"quantity_on_hand": true,
	"status":           true,
}

var StockMovementSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"occurred_at": true,
	"type":        true,
	"quantity":    true,
}

var PurchaseOrderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"number":        true,
	"supplier_name": true,
	"order_date":    true,
	"expected_date": true,
	"gross_amount":  true,
	"status":        true,
}

var EmployeeSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"last_name":    true,
	"first_name":   true,
	"department":   true,
	"hire_date":    true,
	"gross_salary": true,
	"status":       true,
}

var PayrollSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"period":     true,
	"status":     true,
}

var ReceiptSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"receipt_date": true,
	"vendor_name":  true,
	"total_amount": true,
	"status":       true,
}

var ForumTopicSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"title":         true,
	"views":         true,
	"reply_count":   true,
	"last_reply_at": true,
}

var BlogPostSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"title":        true,
	"published_at": true,
	"views":        true,
	"status":       true,
}

var JobSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"status":       true,
	"entity":       true,
	"completed_at": true,
}

package persistence

import (
	"testing"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":                         "DESC",
		"asc":                      "ASC",
		"  Asc ":                   "ASC",
		"DESC":                     "DESC",
		"ascending":                "DESC",
		"ASC; DROP TABLE invoices": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty falls back", "", "issue_date"},
		{"whitelisted", "gross_amount", "gross_amount"},
		{"trimmed", "  partner_name ", "partner_name"},
		{"case sensitive", "NUMBER", "issue_date"},
		{"unknown column", "vat_amount", "issue_date"},
		{"expression", "CASE WHEN 1=1 THEN id ELSE number END", "issue_date"},
		{"stacked statement", "number; DROP TABLE invoices;--", "issue_date"},
		{"subquery", "id, (SELECT password_hash FROM users)", "issue_date"},
		{"comment", "id/**/", "issue_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.input, InvoiceSortFields, "issue_date"))
		})
	}
}

func TestSortFieldWhitelistsAllowAuditColumns(t *testing.T) {
	for name, whitelist := range map[string]map[string]bool{
		"company":        CompanySortFields,
		"client":         ClientSortFields,
		"project":        ProjectSortFields,
		"invoice":        InvoiceSortFields,
		"submission":     SubmissionSortFields,
		"product":        ProductSortFields,
		"stock_movement": StockMovementSortFields,
		"purchase_order": PurchaseOrderSortFields,
		"employee":       EmployeeSortFields,
		"payroll":        PayrollSortFields,
		"receipt":        ReceiptSortFields,
		"forum_topic":    ForumTopicSortFields,
		"blog_post":      BlogPostSortFields,
		"job":            JobSortFields,
	} {
		for _, column := range []string{"id", "created_at", "updated_at"} {
			assert.True(t, whitelist[column], "%s whitelist misses %s", name, column)
		}
	}
}

func TestPaginate_OrdersByWhitelistedFieldThenID(t *testing.T) {
	db, _, _ := newMockGorm(t)

	tests := []struct {
		name      string
		filter    shared.Filter
		wantOrder string
	}{
		{
			name:      "requested field with id tiebreak",
			filter:    shared.Filter{Page: 3, PageSize: 20, OrderBy: "gross_amount", OrderDir: "asc"},
			wantOrder: "ORDER BY gross_amount ASC, id ASC",
		},
		{
			name:      "rejected field uses default",
			filter:    shared.Filter{Page: 1, PageSize: 20, OrderBy: "vat_amount;--"},
			wantOrder: "ORDER BY issue_date DESC, id DESC",
		},
		{
			name:      "id needs no tiebreak",
			filter:    shared.Filter{Page: 1, PageSize: 20, OrderBy: "id", OrderDir: "asc"},
			wantOrder: "ORDER BY id ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []map[string]any
			stmt := paginate(db.Session(&gorm.Session{DryRun: true}).Table("invoices"),
				tt.filter, InvoiceSortFields, "issue_date").Find(&rows).Statement

			sql := stmt.SQL.String()
			assert.Contains(t, sql, tt.wantOrder)
			assert.Contains(t, sql, "LIMIT")
		})
	}
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, "%Contabil SRL%", searchPattern("  Contabil SRL "))
}

package dataexchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/hr"
	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/project"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// RowSource pages through one entity and renders each record as a flat row
// matching Header.
type RowSource interface {
	Header() []string
	Page(ctx context.Context, tenantID, companyID uuid.UUID, filters map[string]string, page, size int) ([][]string, error)
}

type filterKind int

const (
	filterText filterKind = iota
	filterUUID
	filterDate
)

// exportFilters lists the filters each entity accepts.
var exportFilters = map[dataexchange.Entity]map[string]filterKind{
	dataexchange.EntityClients:   {"status": filterText, "type": filterText},
	dataexchange.EntityProjects:  {"status": filterText, "priority": filterText, "client_id": filterUUID},
	dataexchange.EntityInvoices:  {"status": filterText, "type": filterText, "from_date": filterDate, "to_date": filterDate},
	dataexchange.EntityProducts:  {"status": filterText, "category": filterText},
	dataexchange.EntityEmployees: {"status": filterText, "department": filterText},
}

// buildFilter turns the stored string filters into repository filter values.
func buildFilter(entity dataexchange.Entity, filters map[string]string) (shared.Filter, error) {
	f := shared.DefaultFilter()
	f.OrderBy = "created_at"
	f.OrderDir = "asc"
	allowed := exportFilters[entity]
	for key, raw := range filters {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		kind, ok := allowed[key]
		if !ok {
			return f, shared.NewDomainError("INVALID_FILTER", fmt.Sprintf("Filter %s is not supported for %s", key, entity))
		}
		switch kind {
		case filterUUID:
			id, err := uuid.Parse(raw)
			if err != nil {
				return f, shared.NewDomainError("INVALID_FILTER", key+" must be a UUID")
			}
			f.Filters[key] = id
		case filterDate:
			d, err := time.Parse(dateLayout, raw)
			if err != nil {
				return f, shared.NewDomainError("INVALID_FILTER", key+" must be YYYY-MM-DD")
			}
			f.Filters[key] = d
		default:
			f.Filters[key] = strings.ToLower(raw)
		}
	}
	return f, nil
}

type finder[T any] interface {
	FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]T, error)
}

type pagedSource[T any] struct {
	entity dataexchange.Entity
	header []string
	repo   finder[T]
	row    func(*T) []string
}

func (s *pagedSource[T]) Header() []string {
	return s.header
}

func (s *pagedSource[T]) Page(ctx context.Context, tenantID, companyID uuid.UUID, filters map[string]string, page, size int) ([][]string, error) {
	f, err := buildFilter(s.entity, filters)
	if err != nil {
		return nil, err
	}
	f.Page = page
	f.PageSize = size
	items, err := s.repo.FindAll(ctx, tenantID, companyID, f)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(items))
	for i := range items {
		rows[i] = s.row(&items[i])
	}
	return rows, nil
}

func NewClientSource(repo finder[client.Client]) RowSource {
	return &pagedSource[client.Client]{
		entity: dataexchange.EntityClients,
		header: []string{"id", "name", "type", "cui", "reg_com", "email", "phone", "address", "city", "county", "country", "status"},
		repo:   repo,
		row: func(c *client.Client) []string {
			return []string{c.ID.String(), c.Name, string(c.Type), c.CUI, c.RegCom, c.Email, c.Phone,
				c.Address, c.City, c.County, c.Country, string(c.Status)}
		},
	}
}

func NewProjectSource(repo finder[project.Project]) RowSource {
	return &pagedSource[project.Project]{
		entity: dataexchange.EntityProjects,
		header: []string{"id", "name", "status", "health_status", "priority", "client_id", "start_date", "end_date", "budget", "currency", "completion_percentage"},
		repo:   repo,
		row: func(p *project.Project) []string {
			clientID := ""
			if p.ClientID != nil {
				clientID = p.ClientID.String()
			}
			return []string{p.ID.String(), p.Name, string(p.Status), string(p.HealthStatus), string(p.Priority), clientID,
				formatDate(p.StartDate), formatDate(p.EndDate), p.Budget.StringFixed(2), string(p.Currency),
				strconv.Itoa(p.CompletionPercentage)}
		},
	}
}

func NewInvoiceSource(repo finder[invoice.Invoice]) RowSource {
	return &pagedSource[invoice.Invoice]{
		entity: dataexchange.EntityInvoices,
		header: []string{"id", "number", "type", "status", "issue_date", "due_date", "partner_name", "partner_cui", "currency", "net_amount", "vat_amount", "gross_amount", "base_gross_amount"},
		repo:   repo,
		row: func(inv *invoice.Invoice) []string {
			return []string{inv.ID.String(), inv.Number, string(inv.Type), string(inv.Status),
				inv.IssueDate.Format(dateLayout), formatDate(inv.DueDate), inv.Partner.Name, inv.Partner.CUI,
				string(inv.Currency), inv.NetAmount.StringFixed(2), inv.VATAmount.StringFixed(2),
				inv.GrossAmount.StringFixed(2), inv.BaseGrossAmount.StringFixed(2)}
		},
	}
}

// NewProductSource uses the import column names so an export can be edited and re-imported.
func NewProductSource(repo finder[inventory.Product]) RowSource {
	return &pagedSource[inventory.Product]{
		entity: dataexchange.EntityProducts,
		header: []string{"code", "name", "unit", "category", "purchase_price", "sale_price", "vat_rate", "min_stock", "quantity_on_hand", "status"},
		repo:   repo,
		row: func(p *inventory.Product) []string {
			return []string{p.Code, p.Name, p.Unit, p.Category, p.PurchasePrice.StringFixed(2), p.SalePrice.StringFixed(2),
				p.VATRate.String(), p.MinStock.String(), p.QuantityOnHand.String(), string(p.Status)}
		},
	}
}

// NewEmployeeSource leaves out the CNP and the IBAN.
func NewEmployeeSource(repo finder[hr.Employee]) RowSource {
	return &pagedSource[hr.Employee]{
		entity: dataexchange.EntityEmployees,
		header: []string{"id", "first_name", "last_name", "email", "position", "department", "hire_date", "termination_date", "contract_type", "gross_salary", "status"},
		repo:   repo,
		row: func(e *hr.Employee) []string {
			return []string{e.ID.String(), e.FirstName, e.LastName, e.Email, e.Position, e.Department,
				e.HireDate.Format(dateLayout), formatDate(e.TerminationDate), string(e.ContractType),
				e.GrossSalary.StringFixed(2), string(e.Status)}
		},
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

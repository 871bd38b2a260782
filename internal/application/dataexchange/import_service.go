package dataexchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	csvimport "github.com/documentiulia/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxImportSize bounds uploaded CSV files (5MB).
const MaxImportSize int64 = 5 << 20

type ClientStore interface {
	FindByCUI(ctx context.Context, tenantID, companyID uuid.UUID, cui string) (*client.Client, error)
	Save(ctx context.Context, c *client.Client) error
	SaveWithLock(ctx context.Context, c *client.Client) error
}

type ProductStore interface {
	FindByCode(ctx context.Context, tenantID, companyID uuid.UUID, code string) (*inventory.Product, error)
	Save(ctx context.Context, p *inventory.Product) error
	SaveWithLock(ctx context.Context, p *inventory.Product) error
}

func clientSchema() *csvimport.Schema {
	return csvimport.NewSchema(
		csvimport.Column{Name: "name", Kind: csvimport.KindText, Required: true, MaxLength: 200},
		csvimport.Column{Name: "type", Kind: csvimport.KindEnum, Values: []string{"company", "individual"}},
		csvimport.Column{Name: "cui", Kind: csvimport.KindCUI, UniqueInFile: true},
		csvimport.Column{Name: "reg_com", Kind: csvimport.KindText, MaxLength: 50},
		csvimport.Column{Name: "email", Kind: csvimport.KindEmail, MaxLength: 100},
		csvimport.Column{Name: "phone", Kind: csvimport.KindText, MaxLength: 30},
		csvimport.Column{Name: "address", Kind: csvimport.KindText, MaxLength: 300},
		csvimport.Column{Name: "city", Kind: csvimport.KindText, MaxLength: 100},
		csvimport.Column{Name: "county", Kind: csvimport.KindText, MaxLength: 50},
		csvimport.Column{Name: "country", Kind: csvimport.KindText, MaxLength: 2},
	)
}

func productSchema() *csvimport.Schema {
	return csvimport.NewSchema(
		csvimport.Column{Name: "code", Kind: csvimport.KindText, Required: true, MaxLength: 50, UniqueInFile: true},
		csvimport.Column{Name: "name", Kind: csvimport.KindText, Required: true, MaxLength: 200},
		csvimport.Column{Name: "unit", Kind: csvimport.KindText, MaxLength: 20},
		csvimport.Column{Name: "category", Kind: csvimport.KindText, MaxLength: 100},
		csvimport.Column{Name: "purchase_price", Kind: csvimport.KindDecimal},
		csvimport.Column{Name: "sale_price", Kind: csvimport.KindDecimal},
		csvimport.Column{Name: "vat_rate", Kind: csvimport.KindVATRate},
		csvimport.Column{Name: "min_stock", Kind: csvimport.KindDecimal},
	)
}

// rowOutcome is what happened to one valid row.
type rowOutcome int

const (
	rowCreated rowOutcome = iota
	rowUpdated
	rowSkipped
)

type ImportService struct {
	imports  dataexchange.ImportJobRepository
	clients  ClientStore
	products ProductStore
	logger   *zap.Logger
}

func NewImportService(imports dataexchange.ImportJobRepository, clients ClientStore, products ProductStore, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{imports: imports, clients: clients, products: products, logger: logger.Named("import")}
}

// Import reads the whole CSV synchronously and stores the outcome. File level
// problems (encoding, headers, size) produce a failed job rather than an error;
// row problems are recorded per row and the remaining rows still import.
func (s *ImportService) Import(ctx context.Context, tenantID, companyID uuid.UUID, createdBy *uuid.UUID, req ImportRequest, fileName string, size int64, file io.Reader) (*ImportJobResponse, error) {
	job, err := dataexchange.NewImportJob(tenantID, companyID, dataexchange.Entity(req.Entity), fileName, size, dataexchange.ConflictMode(req.ConflictMode))
	if err != nil {
		return nil, err
	}
	job.CreatedBy = createdBy

	schema := clientSchema()
	upsert := s.upsertClient
	if job.Entity == dataexchange.EntityProducts {
		schema = productSchema()
		upsert = s.upsertProduct
	}

	if err := s.run(ctx, job, schema, file, upsert); err != nil {
		return nil, err
	}
	if err := s.imports.Save(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info("import finished",
		zap.String("import_id", job.ID.String()),
		zap.String("entity", string(job.Entity)),
		zap.String("status", string(job.Status)),
		zap.Int("total", job.TotalRows),
		zap.Int("imported", job.Imported),
		zap.Int("updated", job.Updated),
		zap.Int("skipped", job.Skipped),
	)
	response := ToImportJobResponse(job)
	return &response, nil
}

type upsertFunc func(ctx context.Context, job *dataexchange.ImportJob, row *csvimport.Row) (rowOutcome, error)

func (s *ImportService) run(ctx context.Context, job *dataexchange.ImportJob, schema *csvimport.Schema, file io.Reader, upsert upsertFunc) error {
	parser, err := csvimport.NewParser(file, MaxImportSize)
	if err != nil {
		job.Abort(err.Error())
		return nil
	}
	if err := parser.RequireHeaders(schema.RequiredColumns()...); err != nil {
		job.Abort(err.Error())
		return nil
	}

	var total, imported, updated, skipped int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The parser error names the line.
			total++
			job.AddError(0, "", err.Error())
			continue
		}
		if row.IsEmpty() {
			continue
		}
		total++

		if rowErrs := schema.Validate(row); len(rowErrs) > 0 {
			for _, e := range rowErrs {
				job.AddError(e.Row, e.Field, e.Message)
			}
			continue
		}
		outcome, err := upsert(ctx, job, row)
		if err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) {
				return err
			}
			job.AddError(row.Line, "", de.Message)
			continue
		}
		switch outcome {
		case rowCreated:
			imported++
		case rowUpdated:
			updated++
		case rowSkipped:
			skipped++
		}
	}
	if total == 0 {
		job.Abort(csvimport.ErrNoDataRows.Error())
		return nil
	}
	job.Finish(total, imported, updated, skipped)
	return nil
}

// resolveConflict decides what happens to a row whose record already exists.
// The bool reports whether the existing record should be overwritten.
func resolveConflict(mode dataexchange.ConflictMode, what string) (rowOutcome, bool, error) {
	switch mode {
	case dataexchange.ConflictModeUpdate:
		return rowUpdated, true, nil
	case dataexchange.ConflictModeFail:
		return 0, false, shared.NewDomainError(shared.ErrAlreadyExists.Code, what+" already exists")
	default:
		return rowSkipped, false, nil
	}
}

func (s *ImportService) upsertClient(ctx context.Context, job *dataexchange.ImportJob, row *csvimport.Row) (rowOutcome, error) {
	cui := valueobject.NormalizeCUI(row.Get("cui"))
	clientType := client.Type(strings.ToLower(row.Get("type")))
	if clientType == "" {
		clientType = client.TypeIndividual
		if cui != "" {
			clientType = client.TypeCompany
		}
	}
	contact := client.Contact{
		RegCom:  row.Get("reg_com"),
		Email:   row.Get("email"),
		Phone:   row.Get("phone"),
		Address: row.Get("address"),
		City:    row.Get("city"),
		County:  row.Get("county"),
		Country: row.Get("country"),
	}

	if cui != "" {
		existing, err := s.clients.FindByCUI(ctx, job.TenantID, job.CompanyID, cui)
		switch {
		case err == nil:
			outcome, overwrite, cerr := resolveConflict(job.ConflictMode, fmt.Sprintf("Client with CUI %s", existing.CUI))
			if !overwrite {
				return outcome, cerr
			}
			if err := existing.Update(row.Get("name"), clientType, cui, contact); err != nil {
				return 0, err
			}
			return outcome, s.clients.SaveWithLock(ctx, existing)
		case !errors.Is(err, shared.ErrNotFound):
			return 0, err
		}
	}

	c, err := client.NewClient(job.TenantID, job.CompanyID, row.Get("name"), clientType, cui)
	if err != nil {
		return 0, err
	}
	if err := c.Update(c.Name, c.Type, c.CUI, contact); err != nil {
		return 0, err
	}
	c.CreatedBy = job.CreatedBy
	return rowCreated, s.clients.Save(ctx, c)
}

func (s *ImportService) upsertProduct(ctx context.Context, job *dataexchange.ImportJob, row *csvimport.Row) (rowOutcome, error) {
	code := strings.ToUpper(row.Get("code"))
	details := inventory.ProductDetails{
		Name:          row.Get("name"),
		Unit:          row.GetOrDefault("unit", "buc"),
		Category:      row.Get("category"),
		PurchasePrice: decimalOrZero(row.Get("purchase_price")),
		SalePrice:     decimalOrZero(row.Get("sale_price")),
		VATRate:       decimalOr(row.Get("vat_rate"), decimal.NewFromInt(21)),
		MinStock:      decimalOrZero(row.Get("min_stock")),
	}

	existing, err := s.products.FindByCode(ctx, job.TenantID, job.CompanyID, code)
	switch {
	case err == nil:
		outcome, overwrite, cerr := resolveConflict(job.ConflictMode, "Product "+code)
		if !overwrite {
			return outcome, cerr
		}
		if err := existing.Update(details); err != nil {
			return 0, err
		}
		return outcome, s.products.SaveWithLock(ctx, existing)
	case !errors.Is(err, shared.ErrNotFound):
		return 0, err
	}

	p, err := inventory.NewProduct(job.TenantID, job.CompanyID, code, details)
	if err != nil {
		return 0, err
	}
	p.CreatedBy = job.CreatedBy
	return rowCreated, s.products.Save(ctx, p)
}

func (s *ImportService) GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*ImportJobResponse, error) {
	job, err := s.imports.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToImportJobResponse(job)
	return &response, nil
}

func (s *ImportService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter ImportListFilter) ([]ImportJobResponse, int64, error) {
	domainFilter := jobFilter(filter.Page, filter.PageSize, filter.Status, filter.Entity)
	jobs, err := s.imports.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.imports.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ImportJobResponse, len(jobs))
	for i := range jobs {
		out[i] = ToImportJobResponse(&jobs[i])
	}
	return out, total, nil
}

func decimalOrZero(value string) decimal.Decimal {
	return decimalOr(value, decimal.Zero)
}

func decimalOr(value string, def decimal.Decimal) decimal.Decimal {
	if value == "" {
		return def
	}
	d, err := csvimport.ParseDecimal(value)
	if err != nil {
		return def
	}
	return d
}

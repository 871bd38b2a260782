// Package dataexchange tracks CSV/JSON exports and CSV imports of company records.
package dataexchange

// Entity names a kind of record that can be exported or imported.
type Entity string

const (
	EntityClients   Entity = "clients"
	EntityProjects  Entity = "projects"
	EntityInvoices  Entity = "invoices"
	EntityProducts  Entity = "products"
	EntityEmployees Entity = "employees"
)

func (e Entity) IsExportable() bool {
	switch e {
	case EntityClients, EntityProjects, EntityInvoices, EntityProducts, EntityEmployees:
		return true
	}
	return false
}

func (e Entity) IsImportable() bool {
	return e == EntityClients || e == EntityProducts
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func (f Format) IsValid() bool {
	return f == FormatCSV || f == FormatJSON
}

// ContentType is the MIME type of the produced file.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// ConflictMode decides what an import does with a row whose key already exists.
type ConflictMode string

const (
	ConflictModeSkip   ConflictMode = "skip"
	ConflictModeUpdate ConflictMode = "update"
	ConflictModeFail   ConflictMode = "fail"
)

func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

package identity

import "sort"

type Role string

const (
	RoleOwner      Role = "owner"
	RoleAccountant Role = "accountant"
	RoleEmployee   Role = "employee"
)

func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return r == RoleOwner || ok
}

// Permissions are "resource:action" strings checked by the HTTP layer.
const (
	PermCompanyRead      = "company:read"
	PermCompanyWrite     = "company:write"
	PermClientRead       = "client:read"
	PermClientWrite      = "client:write"
	PermProjectRead      = "project:read"
	PermProjectWrite     = "project:write"
	PermInvoiceRead      = "invoice:read"
	PermInvoiceWrite     = "invoice:write"
	PermEFacturaRead     = "efactura:read"
	PermEFacturaSubmit   = "efactura:submit"
	PermInventoryRead    = "inventory:read"
	PermInventoryWrite   = "inventory:write"
	PermProcurementRead  = "procurement:read"
	PermProcurementWrite = "procurement:write"
	PermHRRead           = "hr:read"
	PermHRWrite          = "hr:write"
	PermReceiptRead      = "receipt:read"
	PermReceiptWrite     = "receipt:write"
	PermExportRead       = "export:read"
	PermExportWrite      = "export:write"
	PermContentWrite     = "content:write"
	PermContentModerate  = "content:moderate"
)

// AllPermissions lists every permission, sorted.
func AllPermissions() []string {
	all := []string{
		PermCompanyRead, PermCompanyWrite, PermClientRead, PermClientWrite,
		PermProjectRead, PermProjectWrite, PermInvoiceRead, PermInvoiceWrite,
		PermEFacturaRead, PermEFacturaSubmit, PermInventoryRead, PermInventoryWrite,
		PermProcurementRead, PermProcurementWrite, PermHRRead, PermHRWrite,
		PermReceiptRead, PermReceiptWrite, PermExportRead, PermExportWrite,
		PermContentWrite, PermContentModerate,
	}
	sort.Strings(all)
	return all
}

var rolePermissions = map[Role][]string{
	RoleAccountant: {
		PermCompanyRead, PermClientRead, PermClientWrite,
		PermProjectRead, PermInvoiceRead, PermInvoiceWrite,
		PermEFacturaRead, PermEFacturaSubmit,
		PermExportRead, PermExportWrite, PermContentWrite,
	},
	RoleEmployee: {
		PermCompanyRead, PermClientRead, PermProjectRead, PermInvoiceRead,
		PermInventoryRead, PermReceiptRead, PermReceiptWrite, PermContentWrite,
	},
}

// Permissions returns what the role grants. Owners get everything.
func (r Role) Permissions() []string {
	if r == RoleOwner {
		return AllPermissions()
	}
	perms := make([]string, len(rolePermissions[r]))
	copy(perms, rolePermissions[r])
	sort.Strings(perms)
	return perms
}

// HasPermission is true when perms contains p.
func HasPermission(perms []string, p string) bool {
	for _, have := range perms {
		if have == p {
			return true
		}
	}
	return false
}

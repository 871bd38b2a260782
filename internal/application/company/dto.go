package company

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/google/uuid"
)

// CreateCompanyRequest represents a request to register a company under the tenant
type CreateCompanyRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=200"`
	CUI             string `json:"cui" binding:"required,cui"`
	RegCom          string `json:"reg_com" binding:"max=50"`
	Address         string `json:"address" binding:"max=500"`
	City            string `json:"city" binding:"max=100"`
	County          string `json:"county" binding:"max=100"`
	Country         string `json:"country" binding:"omitempty,len=2"`
	VATPayer        bool   `json:"vat_payer"`
	IBAN            string `json:"iban" binding:"max=34"`
	BankName        string `json:"bank_name" binding:"max=100"`
	Email           string `json:"email" binding:"omitempty,email,max=200"`
	Phone           string `json:"phone" binding:"max=50"`
	DefaultCurrency string `json:"default_currency" binding:"omitempty,len=3"`

	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateCompanyRequest replaces the descriptive fields of a company
type UpdateCompanyRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=200"`
	RegCom          string `json:"reg_com" binding:"max=50"`
	Address         string `json:"address" binding:"max=500"`
	City            string `json:"city" binding:"max=100"`
	County          string `json:"county" binding:"max=100"`
	Country         string `json:"country" binding:"omitempty,len=2"`
	VATPayer        bool   `json:"vat_payer"`
	IBAN            string `json:"iban" binding:"max=34"`
	BankName        string `json:"bank_name" binding:"max=100"`
	Email           string `json:"email" binding:"omitempty,email,max=200"`
	Phone           string `json:"phone" binding:"max=50"`
	DefaultCurrency string `json:"default_currency" binding:"omitempty,len=3"`
}

// CompanyListFilter represents filter options for the company list
type CompanyListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	Name            string    `json:"name"`
	CUI             string    `json:"cui"`
	VATCode         string    `json:"vat_code"`
	RegCom          string    `json:"reg_com"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	County          string    `json:"county"`
	Country         string    `json:"country"`
	VATPayer        bool      `json:"vat_payer"`
	IBAN            string    `json:"iban"`
	BankName        string    `json:"bank_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	DefaultCurrency string    `json:"default_currency"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int       `json:"version"`
}

func ToCompanyResponse(c *company.Company) CompanyResponse {
	return CompanyResponse{
		ID:              c.ID,
		TenantID:        c.TenantID,
		Name:            c.Name,
		CUI:             c.CUI,
		VATCode:         c.VATCode(),
		RegCom:          c.RegCom,
		Address:         c.Address,
		City:            c.City,
		County:          c.County,
		Country:         c.Country,
		VATPayer:        c.VATPayer,
		IBAN:            c.IBAN,
		BankName:        c.BankName,
		Email:           c.Email,
		Phone:           c.Phone,
		DefaultCurrency: string(c.DefaultCurrency),
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

func ToCompanyResponses(companies []company.Company) []CompanyResponse {
	out := make([]CompanyResponse, len(companies))
	for i := range companies {
		out[i] = ToCompanyResponse(&companies[i])
	}
	return out
}

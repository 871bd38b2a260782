package inventory

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Code          string          `json:"code" binding:"required,min=1,max=50"`
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Unit          string          `json:"unit" binding:"max=20"`
	Category      string          `json:"category" binding:"max=100"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	VATRate       decimal.Decimal `json:"vat_rate" binding:"vat_rate"`
	MinStock      decimal.Decimal `json:"min_stock"`

	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateProductRequest replaces the editable attributes. Status toggles active/inactive.
type UpdateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Unit          string          `json:"unit" binding:"max=20"`
	Category      string          `json:"category" binding:"max=100"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	VATRate       decimal.Decimal `json:"vat_rate" binding:"vat_rate"`
	MinStock      decimal.Decimal `json:"min_stock"`
	Status        *string         `json:"status" binding:"omitempty,oneof=active inactive"`
}

type ProductListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	CompanyID      uuid.UUID       `json:"company_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category,omitempty"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	VATRate        decimal.Decimal `json:"vat_rate"`
	MinStock       decimal.Decimal `json:"min_stock"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	LowStock       bool            `json:"low_stock"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// RecordMovementRequest books one stock movement. Direction is required for adjustments.
type RecordMovementRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=receipt issue transfer adjustment return scrap"`
	Direction    string          `json:"direction" binding:"omitempty,oneof=in out"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Reference    string          `json:"reference" binding:"max=100"`
	FromLocation string          `json:"from_location" binding:"max=100"`
	ToLocation   string          `json:"to_location" binding:"max=100"`
	Notes        string          `json:"notes" binding:"max=1000"`
	OccurredAt   *time.Time      `json:"occurred_at"`

	CreatedBy *uuid.UUID `json:"-"`
}

type MovementListFilter struct {
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Type      string `form:"type" binding:"omitempty,oneof=receipt issue transfer adjustment return scrap"`
	FromDate  string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type MovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Type         string          `json:"type"`
	Direction    string          `json:"direction,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Reference    string          `json:"reference,omitempty"`
	FromLocation string          `json:"from_location,omitempty"`
	ToLocation   string          `json:"to_location,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type MovementTypeTotals struct {
	Type     string          `json:"type"`
	Count    int64           `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
}

type MovementAnalyticsResponse struct {
	FromDate string               `json:"from_date,omitempty"`
	ToDate   string               `json:"to_date,omitempty"`
	Total    int64                `json:"total"`
	ByType   []MovementTypeTotals `json:"by_type"`
}

func ToProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		Code:           p.Code,
		Name:           p.Name,
		Unit:           p.Unit,
		Category:       p.Category,
		PurchasePrice:  p.PurchasePrice,
		SalePrice:      p.SalePrice,
		VATRate:        p.VATRate,
		MinStock:       p.MinStock,
		QuantityOnHand: p.QuantityOnHand,
		LowStock:       p.IsLowStock(),
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

func ToProductResponses(products []inventory.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Type:         string(m.Type),
		Direction:    string(m.Direction),
		Quantity:     m.Quantity,
		UnitCost:     m.UnitCost,
		TotalCost:    m.TotalCost(),
		Reference:    m.Reference,
		FromLocation: m.FromLocation,
		ToLocation:   m.ToLocation,
		Notes:        m.Notes,
		OccurredAt:   m.OccurredAt,
		BalanceAfter: m.BalanceAfter,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}

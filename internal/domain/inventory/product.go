// Package inventory keeps the product catalogue of a company and its stock movement ledger.
package inventory

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

var productCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]{0,49}$`)

// Product is a stock-keeping item. QuantityOnHand only changes through ApplyMovement.
type Product struct {
	shared.CompanyAggregateRoot
	Code           string
	Name           string
	Unit           string
	Category       string
	PurchasePrice  decimal.Decimal
	SalePrice      decimal.Decimal
	VATRate        decimal.Decimal
	MinStock       decimal.Decimal
	QuantityOnHand decimal.Decimal
	Status         ProductStatus
}

// ProductDetails groups the editable attributes of a product.
type ProductDetails struct {
	Name          string
	Unit          string
	Category      string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	VATRate       decimal.Decimal
	MinStock      decimal.Decimal
}

func NewProduct(tenantID, companyID uuid.UUID, code string, details ProductDetails) (*Product, error) {
	if !productCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code must be 1-50 letters, digits, '-', '_' or '.'")
	}
	p := &Product{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Code:                 strings.ToUpper(code),
		QuantityOnHand:       decimal.Zero,
		Status:               ProductStatusActive,
	}
	if err := p.applyDetails(details); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

func (p *Product) Update(details ProductDetails) error {
	if err := p.applyDetails(details); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsLowStock reports whether stock fell to or below the configured minimum.
func (p *Product) IsLowStock() bool {
	return p.MinStock.IsPositive() && p.QuantityOnHand.LessThanOrEqual(p.MinStock)
}

// ApplyMovement books m against the stock and stamps the resulting balance on it.
func (p *Product) ApplyMovement(m *StockMovement) error {
	if m.ProductID != p.ID {
		return shared.NewDomainError("PRODUCT_MISMATCH", "Movement does not belong to this product")
	}
	if p.Status != ProductStatusActive && m.SignedQuantity().IsNegative() {
		return shared.NewDomainError("PRODUCT_INACTIVE", "Cannot issue stock of an inactive product")
	}
	next := p.QuantityOnHand.Add(m.SignedQuantity())
	if next.IsNegative() {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock for %s: on hand %s, requested %s",
				p.Code, p.QuantityOnHand.String(), m.Quantity.String()))
	}
	wasLow := p.IsLowStock()
	p.QuantityOnHand = next
	m.BalanceAfter = next
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockChangedEvent(p, m))
	if !wasLow && p.IsLowStock() {
		p.AddDomainEvent(NewLowStockEvent(p))
	}
	return nil
}

func (p *Product) applyDetails(d ProductDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name is required and cannot exceed 200 characters")
	}
	if d.PurchasePrice.IsNegative() || d.SalePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if d.MinStock.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	if err := valueobject.ValidateVATRate(d.VATRate); err != nil {
		return shared.NewDomainError("INVALID_VAT_RATE", err.Error())
	}
	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		unit = "buc"
	}
	p.Name = name
	p.Unit = unit
	p.Category = strings.TrimSpace(d.Category)
	p.PurchasePrice = d.PurchasePrice
	p.SalePrice = d.SalePrice
	p.VATRate = d.VATRate
	p.MinStock = d.MinStock
	return nil
}

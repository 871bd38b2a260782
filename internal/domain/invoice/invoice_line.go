package invoice

import (
	"strings"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultUnit is the UN/ECE-neutral Romanian abbreviation for "bucată" (piece).
const DefaultUnit = "buc"

// Line is one billed item. Amounts are derived and rounded per line.
type Line struct {
	ID          uuid.UUID
	LineNumber  int
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	GrossAmount decimal.Decimal
}

func NewLine(description string, quantity decimal.Decimal, unit string, unitPrice, vatRate decimal.Decimal) (Line, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Line{}, shared.NewDomainError("INVALID_LINE", "Line description is required")
	}
	if !quantity.IsPositive() {
		return Line{}, shared.NewDomainError("INVALID_LINE", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return Line{}, shared.NewDomainError("INVALID_LINE", "Line unit price cannot be negative")
	}
	if err := valueobject.ValidateVATRate(vatRate); err != nil {
		return Line{}, shared.NewDomainError("INVALID_VAT_RATE", err.Error())
	}
	if strings.TrimSpace(unit) == "" {
		unit = DefaultUnit
	}

	l := Line{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		Unit:        unit,
		UnitPrice:   unitPrice,
		VATRate:     vatRate,
	}
	l.calculate()
	return l, nil
}

func (l *Line) calculate() {
	l.NetAmount = valueobject.Round2(l.Quantity.Mul(l.UnitPrice))
	l.VATAmount = valueobject.VATAmount(l.NetAmount, l.VATRate)
	l.GrossAmount = l.NetAmount.Add(l.VATAmount)
}

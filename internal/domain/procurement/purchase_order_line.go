package procurement

import (
	"strings"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is an ordered item. ProductID links it to inventory so receiving books stock.
type Line struct {
	ID               uuid.UUID
	LineNumber       int
	ProductID        *uuid.UUID
	Description      string
	Quantity         decimal.Decimal
	Unit             string
	UnitPrice        decimal.Decimal
	VATRate          decimal.Decimal
	NetAmount        decimal.Decimal
	VATAmount        decimal.Decimal
	GrossAmount      decimal.Decimal
	ReceivedQuantity decimal.Decimal
	Status           LineStatus
}

func NewLine(productID *uuid.UUID, description string, quantity decimal.Decimal, unit string, unitPrice, vatRate decimal.Decimal) (Line, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Line{}, shared.NewDomainError("INVALID_LINE", "Line description is required")
	}
	if !quantity.IsPositive() {
		return Line{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return Line{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if err := valueobject.ValidateVATRate(vatRate); err != nil {
		return Line{}, shared.NewDomainError("INVALID_VAT_RATE", err.Error())
	}
	if productID != nil && *productID == uuid.Nil {
		productID = nil
	}
	if strings.TrimSpace(unit) == "" {
		unit = "buc"
	}
	net := valueobject.Round2(quantity.Mul(unitPrice))
	vat := valueobject.VATAmount(net, vatRate)
	return Line{
		ID:               uuid.New(),
		ProductID:        productID,
		Description:      description,
		Quantity:         quantity,
		Unit:             unit,
		UnitPrice:        unitPrice,
		VATRate:          vatRate,
		NetAmount:        net,
		VATAmount:        vat,
		GrossAmount:      net.Add(vat),
		ReceivedQuantity: decimal.Zero,
		Status:           LineStatusOpen,
	}, nil
}

// RemainingQuantity never goes below zero.
func (l *Line) RemainingQuantity() decimal.Decimal {
	r := l.Quantity.Sub(l.ReceivedQuantity)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

func (l *Line) IsFullyReceived() bool {
	return l.Status == LineStatusFullyReceived
}

func (l *Line) receive(qty decimal.Decimal) error {
	if l.Status == LineStatusCancelled {
		return shared.NewDomainError("LINE_CANCELLED", "Cannot receive a cancelled line")
	}
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if qty.GreaterThan(l.RemainingQuantity()) {
		return shared.NewDomainError("EXCEEDS_REMAINING",
			"Received quantity "+qty.String()+" exceeds remaining "+l.RemainingQuantity().String()+" for line "+l.Description)
	}
	l.ReceivedQuantity = l.ReceivedQuantity.Add(qty)
	if l.RemainingQuantity().IsZero() {
		l.Status = LineStatusFullyReceived
	} else {
		l.Status = LineStatusPartiallyReceived
	}
	return nil
}

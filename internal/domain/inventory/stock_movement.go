package inventory

import (
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementReceipt    MovementType = "receipt"
	MovementIssue      MovementType = "issue"
	MovementTransfer   MovementType = "transfer"
	MovementAdjustment MovementType = "adjustment"
	MovementReturn     MovementType = "return"
	MovementScrap      MovementType = "scrap"
)

// MovementTypes lists every movement type in display order.
func MovementTypes() []MovementType {
	return []MovementType{MovementReceipt, MovementIssue, MovementTransfer, MovementAdjustment, MovementReturn, MovementScrap}
}

func (t MovementType) IsValid() bool {
	for _, v := range MovementTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Direction qualifies adjustments, which can go either way.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// StockMovement is an immutable ledger entry. Quantity is always positive;
// the sign comes from the type and, for adjustments, the direction.
type StockMovement struct {
	shared.CompanyAggregateRoot
	ProductID    uuid.UUID
	Type         MovementType
	Direction    Direction
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	Reference    string
	FromLocation string
	ToLocation   string
	Notes        string
	OccurredAt   time.Time
	BalanceAfter decimal.Decimal
}

// MovementDetails are the optional attributes of a movement.
type MovementDetails struct {
	Direction    Direction
	UnitCost     decimal.Decimal
	Reference    string
	FromLocation string
	ToLocation   string
	Notes        string
	OccurredAt   time.Time
}

func NewStockMovement(tenantID, companyID, productID uuid.UUID, movementType MovementType, quantity decimal.Decimal, details MovementDetails) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type: "+string(movementType))
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if details.UnitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_COST", "Unit cost cannot be negative")
	}
	from := strings.TrimSpace(details.FromLocation)
	to := strings.TrimSpace(details.ToLocation)
	if err := validateLocations(movementType, from, to); err != nil {
		return nil, err
	}
	if movementType == MovementAdjustment && details.Direction != DirectionIn && details.Direction != DirectionOut {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Adjustments require direction in or out")
	}
	occurred := details.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	return &StockMovement{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		ProductID:            productID,
		Type:                 movementType,
		Direction:            details.Direction,
		Quantity:             quantity,
		UnitCost:             details.UnitCost,
		Reference:            strings.TrimSpace(details.Reference),
		FromLocation:         from,
		ToLocation:           to,
		Notes:                details.Notes,
		OccurredAt:           occurred,
	}, nil
}

// SignedQuantity is the effect of the movement on quantity on hand.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	switch m.Type {
	case MovementReceipt, MovementReturn:
		return m.Quantity
	case MovementIssue, MovementScrap:
		return m.Quantity.Neg()
	case MovementAdjustment:
		if m.Direction == DirectionOut {
			return m.Quantity.Neg()
		}
		return m.Quantity
	default:
		return decimal.Zero
	}
}

// TotalCost is quantity times unit cost.
func (m *StockMovement) TotalCost() decimal.Decimal {
	return m.Quantity.Mul(m.UnitCost).Round(2)
}

func validateLocations(t MovementType, from, to string) error {
	switch t {
	case MovementReceipt:
		if to == "" {
			return shared.NewDomainError("LOCATION_REQUIRED", "Destination location is required for a receipt")
		}
	case MovementIssue, MovementScrap:
		if from == "" {
			return shared.NewDomainError("LOCATION_REQUIRED", "Source location is required for an issue")
		}
	case MovementTransfer:
		if from == "" || to == "" {
			return shared.NewDomainError("LOCATION_REQUIRED", "Transfers require source and destination locations")
		}
		if strings.EqualFold(from, to) {
			return shared.NewDomainError("SAME_LOCATION", "Cannot transfer to the same location")
		}
	}
	return nil
}

// Package procurement models supplier purchase orders from drafting to closing.
package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NumberSeries prefixes purchase order numbers.
const NumberSeries = "PO"

// Supplier identifies the vendor on the order.
type Supplier struct {
	Name string
	CUI  string
}

// Header holds the editable order attributes.
type Header struct {
	Supplier     Supplier
	OrderDate    time.Time
	ExpectedDate *time.Time
	Currency     valueobject.Currency
	PaymentTerms string
	Notes        string
}

type PurchaseOrder struct {
	shared.CompanyAggregateRoot
	Number       string
	Supplier     Supplier
	OrderDate    time.Time
	ExpectedDate *time.Time
	Currency     valueobject.Currency
	PaymentTerms string
	Lines        []Line
	NetAmount    decimal.Decimal
	VATAmount    decimal.Decimal
	GrossAmount  decimal.Decimal
	Status       Status
	Notes        string
	ApprovedBy   *uuid.UUID
	ApprovedAt   *time.Time
	RejectReason string
	SentAt       *time.Time
	ReceivedAt   *time.Time
	CancelReason string
	CancelledAt  *time.Time
}

// ReceiveItem is one line quantity in a goods receipt.
type ReceiveItem struct {
	LineID   uuid.UUID
	Quantity decimal.Decimal
}

// ReceivedLine describes what a receipt booked, so stock can follow.
type ReceivedLine struct {
	LineID    uuid.UUID
	ProductID *uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// FormatNumber renders a purchase order number such as PO-000001.
func FormatNumber(sequence int) string {
	return invoice.FormatNumber(NumberSeries, sequence)
}

func NewPurchaseOrder(tenantID, companyID uuid.UUID, number string, header Header) (*PurchaseOrder, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number is required")
	}
	po := &PurchaseOrder{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(tenantID, companyID),
		Number:               number,
		Lines:                []Line{},
		Status:               StatusDraft,
	}
	if err := po.applyHeader(header); err != nil {
		return nil, err
	}
	po.recalculate()
	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

// UpdateHeader edits supplier, dates and terms of a draft.
func (po *PurchaseOrder) UpdateHeader(header Header) error {
	if po.Status != StatusDraft {
		return shared.NewDomainError("NOT_EDITABLE", "Only draft purchase orders can be edited")
	}
	if err := po.applyHeader(header); err != nil {
		return err
	}
	po.touch()
	return nil
}

// SetLines replaces every line of a draft and renumbers them.
func (po *PurchaseOrder) SetLines(lines []Line) error {
	if po.Status != StatusDraft {
		return shared.NewDomainError("NOT_EDITABLE", "Only draft purchase orders accept line edits")
	}
	po.Lines = make([]Line, len(lines))
	for i := range lines {
		po.Lines[i] = lines[i]
		po.Lines[i].LineNumber = i + 1
	}
	po.recalculate()
	po.touch()
	return nil
}

func (po *PurchaseOrder) CanDelete() bool {
	return po.Status == StatusDraft
}

func (po *PurchaseOrder) Submit() error {
	if len(po.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "A purchase order needs at least one line before submission")
	}
	return po.transition(StatusPendingApproval)
}

func (po *PurchaseOrder) Approve(approverID uuid.UUID) error {
	if err := po.transition(StatusApproved); err != nil {
		return err
	}
	now := time.Now()
	po.ApprovedAt = &now
	if approverID != uuid.Nil {
		po.ApprovedBy = &approverID
	}
	return nil
}

// Reject sends a pending order back to draft.
func (po *PurchaseOrder) Reject(reason string) error {
	if po.Status != StatusPendingApproval {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot reject a purchase order in %s status", po.Status))
	}
	if err := po.transition(StatusDraft); err != nil {
		return err
	}
	po.RejectReason = strings.TrimSpace(reason)
	return nil
}

func (po *PurchaseOrder) Send() error {
	if err := po.transition(StatusSentToSupplier); err != nil {
		return err
	}
	now := time.Now()
	po.SentAt = &now
	return nil
}

func (po *PurchaseOrder) Acknowledge() error {
	return po.transition(StatusAcknowledged)
}

// Receive books the given quantities. All items are checked before anything changes.
func (po *PurchaseOrder) Receive(items []ReceiveItem) ([]ReceivedLine, error) {
	if !po.Status.CanReceive() {
		return nil, shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot receive goods for a purchase order in %s status", po.Status))
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Nothing to receive")
	}

	staged := make([]Line, len(po.Lines))
	copy(staged, po.Lines)
	received := make([]ReceivedLine, 0, len(items))
	for _, item := range items {
		idx := indexOfLine(staged, item.LineID)
		if idx < 0 {
			return nil, shared.NewDomainError("LINE_NOT_FOUND", "Line "+item.LineID.String()+" is not part of this order")
		}
		if err := staged[idx].receive(item.Quantity); err != nil {
			return nil, err
		}
		received = append(received, ReceivedLine{
			LineID:    staged[idx].ID,
			ProductID: staged[idx].ProductID,
			Quantity:  item.Quantity,
			UnitPrice: staged[idx].UnitPrice,
		})
	}

	po.Lines = staged
	target := StatusPartiallyReceived
	if po.allLinesReceived() {
		target = StatusFullyReceived
		now := time.Now()
		po.ReceivedAt = &now
	}
	if err := po.transition(target); err != nil {
		return nil, err
	}
	po.AddDomainEvent(NewPurchaseOrderReceivedEvent(po, received))
	return received, nil
}

func (po *PurchaseOrder) MarkInvoiced() error {
	return po.transition(StatusInvoiced)
}

func (po *PurchaseOrder) Close() error {
	return po.transition(StatusClosed)
}

// Cancel is allowed until the order is fully received. Open lines are cancelled with it.
func (po *PurchaseOrder) Cancel(reason string) error {
	if err := po.transition(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	po.CancelledAt = &now
	po.CancelReason = strings.TrimSpace(reason)
	for i := range po.Lines {
		if po.Lines[i].Status != LineStatusFullyReceived {
			po.Lines[i].Status = LineStatusCancelled
		}
	}
	return nil
}

func (po *PurchaseOrder) transition(target Status) error {
	if !po.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot change purchase order status from %s to %s", po.Status, target))
	}
	from := po.Status
	po.Status = target
	po.touch()
	if from != target {
		po.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(po, from))
	}
	return nil
}

func (po *PurchaseOrder) allLinesReceived() bool {
	active := 0
	for i := range po.Lines {
		switch po.Lines[i].Status {
		case LineStatusCancelled:
			continue
		case LineStatusFullyReceived:
			active++
		default:
			return false
		}
	}
	return active > 0
}

func (po *PurchaseOrder) recalculate() {
	po.NetAmount, po.VATAmount, po.GrossAmount = decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range po.Lines {
		po.NetAmount = po.NetAmount.Add(l.NetAmount)
		po.VATAmount = po.VATAmount.Add(l.VATAmount)
		po.GrossAmount = po.GrossAmount.Add(l.GrossAmount)
	}
}

func (po *PurchaseOrder) applyHeader(h Header) error {
	name := strings.TrimSpace(h.Supplier.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_SUPPLIER", "Supplier name is required")
	}
	cui := strings.TrimSpace(h.Supplier.CUI)
	if cui != "" {
		if err := valueobject.ValidateCUI(cui); err != nil {
			return shared.NewDomainError("INVALID_CUI", err.Error())
		}
		cui = valueobject.NormalizeCUI(cui)
	}
	orderDate := h.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	if h.ExpectedDate != nil && h.ExpectedDate.Before(orderDate.Truncate(24*time.Hour)) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Expected date cannot be before the order date")
	}
	currency := h.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if _, err := valueobject.ParseCurrency(string(currency)); err != nil {
		return shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	po.Supplier = Supplier{Name: name, CUI: cui}
	po.OrderDate = orderDate
	po.ExpectedDate = h.ExpectedDate
	po.Currency = currency
	po.PaymentTerms = strings.TrimSpace(h.PaymentTerms)
	po.Notes = h.Notes
	return nil
}

func (po *PurchaseOrder) touch() {
	po.UpdatedAt = time.Now()
	po.IncrementVersion()
}

func indexOfLine(lines []Line, id uuid.UUID) int {
	for i := range lines {
		if lines[i].ID == id {
			return i
		}
	}
	return -1
}

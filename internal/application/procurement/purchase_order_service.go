// Package procurement implements the purchase order workflow.
package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/procurement"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockReceiver books received goods into inventory.
type StockReceiver interface {
	ReceiveStock(ctx context.Context, tenantID, companyID, productID uuid.UUID, quantity, unitCost decimal.Decimal, reference string) error
}

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orders         procurement.PurchaseOrderRepository
	stock          StockReceiver
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewPurchaseOrderService(orders procurement.PurchaseOrderRepository, stock StockReceiver, logger *zap.Logger) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orders: orders,
		stock:  stock,
		logger: logger.Named("procurement"),
	}
}

func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PurchaseOrderService) Create(ctx context.Context, tenantID, companyID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	header, err := toHeader(req)
	if err != nil {
		return nil, err
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	seq, err := s.orders.NextSequence(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}

	po, err := procurement.NewPurchaseOrder(tenantID, companyID, procurement.FormatNumber(seq), header)
	if err != nil {
		return nil, err
	}
	if err := po.SetLines(lines); err != nil {
		return nil, err
	}
	po.CreatedBy = req.CreatedBy

	if err := s.orders.Save(ctx, po); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, po)

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

func (s *PurchaseOrderService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = strings.TrimSpace(filter.Search)

	if filter.Status != "" {
		if !procurement.Status(filter.Status).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown purchase order status: "+filter.Status)
		}
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.FromDate != "" {
		from, err := parseDate(filter.FromDate, "from_date")
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["from_date"] = from
	}
	if filter.ToDate != "" {
		to, err := parseDate(filter.ToDate, "to_date")
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["to_date"] = to
	}

	orders, err := s.orders.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return out, total, nil
}

// Update replaces header and lines of a draft order.
func (s *PurchaseOrderService) Update(ctx context.Context, tenantID, companyID, id uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	header, err := toHeader(req)
	if err != nil {
		return nil, err
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	if err := po.UpdateHeader(header); err != nil {
		return nil, err
	}
	if err := po.SetLines(lines); err != nil {
		return nil, err
	}
	return s.save(ctx, po)
}

func (s *PurchaseOrderService) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	po, err := s.orders.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return err
	}
	if !po.CanDelete() {
		return shared.NewDomainError("NOT_EDITABLE", "Only draft purchase orders can be deleted")
	}
	return s.orders.Delete(ctx, tenantID, companyID, id)
}

func (s *PurchaseOrderService) Submit(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(po *procurement.PurchaseOrder) error { return po.Submit() })
}

func (s *PurchaseOrderService) Approve(ctx context.Context, tenantID, companyID, id, approverID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(po *procurement.PurchaseOrder) error { return po.Approve(approverID) })
}

func (s *PurchaseOrderService) Reject(ctx context.Context, tenantID, companyID, id uuid.UUID, req ReasonRequest) (*PurchaseOrderResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(po *procurement.PurchaseOrder) error { return po.Reject(req.Reason) })
}

func (s *PurchaseOrderService) Send(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(po *procurement.PurchaseOrder) error { return po.Send() })
}

func (s *PurchaseOrderService) Acknowledge(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(po *procurement.PurchaseOrder) error { return po.Acknowledge() })
}

func (s *PurchaseOrderService) MarkInvoiced(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(po *procurement.PurchaseOrder) error { return po.MarkInvoiced() })
}

func (s *PurchaseOrderService) Close(ctx context.Context, tenantID, companyID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(po *procurement.PurchaseOrder) error { return po.Close() })
}

func (s *PurchaseOrderService) Cancel(ctx context.Context, tenantID, companyID, id uuid.UUID, req ReasonRequest) (*PurchaseOrderResponse, error) {
	return s.apply(ctx, tenantID, companyID, id, func(po *procurement.PurchaseOrder) error { return po.Cancel(req.Reason) })
}

// Receive books a goods receipt. The order is saved first; lines linked to a
// product are then booked into stock one by one, and bookings that fail are
// reported as warnings rather than undoing the receipt.
func (s *PurchaseOrderService) Receive(ctx context.Context, tenantID, companyID, id uuid.UUID, req ReceiveRequest) (*ReceiveResponse, error) {
	po, err := s.orders.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	items := make([]procurement.ReceiveItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = procurement.ReceiveItem{LineID: it.LineID, Quantity: it.Quantity}
	}
	received, err := po.Receive(items)
	if err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, po); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, po)

	resp := &ReceiveResponse{PurchaseOrderResponse: ToPurchaseOrderResponse(po)}
	if s.stock == nil {
		return resp, nil
	}
	for _, r := range received {
		if r.ProductID == nil {
			continue
		}
		if err := s.stock.ReceiveStock(ctx, tenantID, companyID, *r.ProductID, r.Quantity, r.UnitPrice, po.Number); err != nil {
			s.logger.Error("stock booking for received line failed",
				zap.String("purchase_order", po.Number),
				zap.String("line_id", r.LineID.String()),
				zap.Error(err))
			resp.StockWarnings = append(resp.StockWarnings,
				fmt.Sprintf("line %s: %s", r.LineID, stockErrorMessage(err)))
		}
	}
	return resp, nil
}

func (s *PurchaseOrderService) apply(ctx context.Context, tenantID, companyID, id uuid.UUID, step func(*procurement.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := step(po); err != nil {
		return nil, err
	}
	return s.save(ctx, po)
}

func (s *PurchaseOrderService) save(ctx context.Context, po *procurement.PurchaseOrder) (*PurchaseOrderResponse, error) {
	if err := s.orders.SaveWithLock(ctx, po); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, po)
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

func (s *PurchaseOrderService) publishDomainEvents(ctx context.Context, po *procurement.PurchaseOrder) {
	if s.eventPublisher == nil {
		po.ClearDomainEvents()
		return
	}
	if events := po.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		po.ClearDomainEvents()
	}
}

func toHeader(req CreatePurchaseOrderRequest) (procurement.Header, error) {
	h := procurement.Header{
		Supplier:     procurement.Supplier{Name: req.SupplierName, CUI: req.SupplierCUI},
		Currency:     valueobject.Currency(strings.ToUpper(strings.TrimSpace(req.Currency))),
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
	}
	if req.OrderDate != "" {
		d, err := parseDate(req.OrderDate, "order_date")
		if err != nil {
			return h, err
		}
		h.OrderDate = d
	}
	if req.ExpectedDate != "" {
		d, err := parseDate(req.ExpectedDate, "expected_date")
		if err != nil {
			return h, err
		}
		h.ExpectedDate = &d
	}
	return h, nil
}

func buildLines(reqs []LineRequest) ([]procurement.Line, error) {
	lines := make([]procurement.Line, 0, len(reqs))
	for i, r := range reqs {
		l, err := procurement.NewLine(r.ProductID, r.Description, r.Quantity, r.Unit, r.UnitPrice, r.VATRate)
		if err != nil {
			if code := shared.ErrorCode(err); code != "" {
				return nil, shared.NewDomainError(code, fmt.Sprintf("Line %d: %s", i+1, err.Error()))
			}
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}

func parseDate(value, field string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_INPUT", field+" must be YYYY-MM-DD")
	}
	return d, nil
}

func stockErrorMessage(err error) string {
	if shared.ErrorCode(err) != "" {
		return err.Error()
	}
	return "stock could not be updated"
}

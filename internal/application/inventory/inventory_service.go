// Package inventory implements product and stock movement use cases.
package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/inventory"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	lowStockLimit = 200
	// DefaultLocation receives goods booked by purchase order receptions.
	DefaultLocation = "MAIN"
)

// InventoryService handles products and the stock ledger
type InventoryService struct {
	products       inventory.ProductRepository
	movements      inventory.StockMovementRepository
	ledger         inventory.StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewInventoryService(
	products inventory.ProductRepository,
	movements inventory.StockMovementRepository,
	ledger inventory.StockLedger,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		products:  products,
		movements: movements,
		ledger:    ledger,
		logger:    logger.Named("inventory"),
	}
}

func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InventoryService) CreateProduct(ctx context.Context, tenantID, companyID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.products.ExistsByCode(ctx, tenantID, companyID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "A product with code "+code+" already exists")
	}

	p, err := inventory.NewProduct(tenantID, companyID, code, inventory.ProductDetails{
		Name:          req.Name,
		Unit:          req.Unit,
		Category:      req.Category,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		VATRate:       req.VATRate,
		MinStock:      req.MinStock,
	})
	if err != nil {
		return nil, err
	}
	p.CreatedBy = req.CreatedBy

	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, p)

	response := ToProductResponse(p)
	return &response, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, tenantID, companyID, productID uuid.UUID) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, tenantID, companyID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(p)
	return &response, nil
}

func (s *InventoryService) ListProducts(ctx context.Context, tenantID, companyID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
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
		domainFilter.Filters["status"] = filter.Status
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		domainFilter.Filters["category"] = c
	}

	products, err := s.products.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.products.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

func (s *InventoryService) UpdateProduct(ctx context.Context, tenantID, companyID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, tenantID, companyID, productID)
	if err != nil {
		return nil, err
	}

	if err := p.Update(inventory.ProductDetails{
		Name:          req.Name,
		Unit:          req.Unit,
		Category:      req.Category,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		VATRate:       req.VATRate,
		MinStock:      req.MinStock,
	}); err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != string(p.Status) {
		switch inventory.ProductStatus(*req.Status) {
		case inventory.ProductStatusActive:
			err = p.Activate()
		case inventory.ProductStatusInactive:
			err = p.Deactivate()
		default:
			err = shared.NewDomainError("INVALID_STATUS", "Unknown product status: "+*req.Status)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.products.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, p)

	response := ToProductResponse(p)
	return &response, nil
}

// DeleteProduct removes a product with no stock on hand.
func (s *InventoryService) DeleteProduct(ctx context.Context, tenantID, companyID, productID uuid.UUID) error {
	p, err := s.products.FindByID(ctx, tenantID, companyID, productID)
	if err != nil {
		return err
	}
	if !p.QuantityOnHand.IsZero() {
		return shared.NewDomainError("HAS_STOCK", "Cannot delete a product with stock on hand")
	}
	return s.products.Delete(ctx, tenantID, companyID, productID)
}

func (s *InventoryService) LowStock(ctx context.Context, tenantID, companyID uuid.UUID) ([]ProductResponse, error) {
	products, err := s.products.FindLowStock(ctx, tenantID, companyID, lowStockLimit)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// RecordMovement books a movement and the resulting product balance in one step.
func (s *InventoryService) RecordMovement(ctx context.Context, tenantID, companyID uuid.UUID, req RecordMovementRequest) (*MovementResponse, error) {
	details := inventory.MovementDetails{
		Direction:    inventory.Direction(req.Direction),
		UnitCost:     req.UnitCost,
		Reference:    req.Reference,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		Notes:        req.Notes,
	}
	if req.OccurredAt != nil {
		details.OccurredAt = *req.OccurredAt
	}
	m, err := s.record(ctx, tenantID, companyID, req.ProductID, inventory.MovementType(req.Type), req.Quantity, details, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	response := ToMovementResponse(m)
	return &response, nil
}

// ReceiveStock books a receipt into DefaultLocation. Purchase order receptions use it.
func (s *InventoryService) ReceiveStock(ctx context.Context, tenantID, companyID, productID uuid.UUID, quantity, unitCost decimal.Decimal, reference string) error {
	_, err := s.record(ctx, tenantID, companyID, productID, inventory.MovementReceipt, quantity, inventory.MovementDetails{
		UnitCost:   unitCost,
		Reference:  reference,
		ToLocation: DefaultLocation,
	}, nil)
	return err
}

func (s *InventoryService) record(
	ctx context.Context,
	tenantID, companyID, productID uuid.UUID,
	movementType inventory.MovementType,
	quantity decimal.Decimal,
	details inventory.MovementDetails,
	createdBy *uuid.UUID,
) (*inventory.StockMovement, error) {
	p, err := s.products.FindByID(ctx, tenantID, companyID, productID)
	if err != nil {
		return nil, err
	}
	m, err := inventory.NewStockMovement(tenantID, companyID, p.ID, movementType, quantity, details)
	if err != nil {
		return nil, err
	}
	m.CreatedBy = createdBy
	if err := p.ApplyMovement(m); err != nil {
		return nil, err
	}
	if err := s.ledger.Record(ctx, p, m); err != nil {
		return nil, err
	}
	s.logger.Debug("stock movement recorded",
		zap.String("product", p.Code),
		zap.String("type", string(m.Type)),
		zap.String("balance_after", m.BalanceAfter.String()))
	s.publishDomainEvents(ctx, p)
	return m, nil
}

func (s *InventoryService) ListMovements(ctx context.Context, tenantID, companyID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "occurred_at"
	domainFilter.OrderDir = "desc"

	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "product_id must be a UUID")
		}
		domainFilter.Filters["product_id"] = id
	}
	if filter.Type != "" {
		if !inventory.MovementType(filter.Type).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type: "+filter.Type)
		}
		domainFilter.Filters["type"] = filter.Type
	}
	if err := applyDateRange(domainFilter.Filters, filter.FromDate, filter.ToDate); err != nil {
		return nil, 0, err
	}

	movements, err := s.movements.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movements.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out, total, nil
}

// MovementAnalytics counts movements and sums quantities per type. Types
// without movements are reported with zero totals.
func (s *InventoryService) MovementAnalytics(ctx context.Context, tenantID, companyID uuid.UUID, fromDate, toDate string) (*MovementAnalyticsResponse, error) {
	filters := map[string]any{}
	if err := applyDateRange(filters, fromDate, toDate); err != nil {
		return nil, err
	}
	domainFilter := shared.DefaultFilter()
	domainFilter.Filters = filters

	totals, err := s.movements.TotalsByType(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, err
	}
	byType := make(map[inventory.MovementType]inventory.MovementTotals, len(totals))
	for _, t := range totals {
		byType[t.Type] = t
	}

	resp := &MovementAnalyticsResponse{FromDate: fromDate, ToDate: toDate}
	for _, mt := range inventory.MovementTypes() {
		t := byType[mt]
		resp.ByType = append(resp.ByType, MovementTypeTotals{Type: string(mt), Count: t.Count, Quantity: t.Quantity})
		resp.Total += t.Count
	}
	return resp, nil
}

// applyDateRange adds inclusive day bounds to filters.
func applyDateRange(filters map[string]any, fromDate, toDate string) error {
	var from, to time.Time
	var err error
	if fromDate != "" {
		if from, err = time.Parse(dateLayout, fromDate); err != nil {
			return shared.NewDomainError("INVALID_INPUT", "from_date must be YYYY-MM-DD")
		}
		filters["from_date"] = from
	}
	if toDate != "" {
		if to, err = time.Parse(dateLayout, toDate); err != nil {
			return shared.NewDomainError("INVALID_INPUT", "to_date must be YYYY-MM-DD")
		}
		filters["to_date"] = to.Add(24*time.Hour - time.Nanosecond)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "to_date cannot be before from_date")
	}
	return nil
}

func (s *InventoryService) publishDomainEvents(ctx context.Context, p *inventory.Product) {
	if s.eventPublisher == nil {
		p.ClearDomainEvents()
		return
	}
	if events := p.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		p.ClearDomainEvents()
	}
}

package handler

import (
	"context"

	appinventory "github.com/documentiulia/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, tenantID, companyID uuid.UUID, req appinventory.CreateProductRequest) (*appinventory.ProductResponse, error)
	GetProduct(ctx context.Context, tenantID, companyID, productID uuid.UUID) (*appinventory.ProductResponse, error)
	ListProducts(ctx context.Context, tenantID, companyID uuid.UUID, filter appinventory.ProductListFilter) ([]appinventory.ProductResponse, int64, error)
	UpdateProduct(ctx context.Context, tenantID, companyID, productID uuid.UUID, req appinventory.UpdateProductRequest) (*appinventory.ProductResponse, error)
	DeleteProduct(ctx context.Context, tenantID, companyID, productID uuid.UUID) error
	LowStock(ctx context.Context, tenantID, companyID uuid.UUID) ([]appinventory.ProductResponse, error)
	RecordMovement(ctx context.Context, tenantID, companyID uuid.UUID, req appinventory.RecordMovementRequest) (*appinventory.MovementResponse, error)
	ListMovements(ctx context.Context, tenantID, companyID uuid.UUID, filter appinventory.MovementListFilter) ([]appinventory.MovementResponse, int64, error)
	MovementAnalytics(ctx context.Context, tenantID, companyID uuid.UUID, fromDate, toDate string) (*appinventory.MovementAnalyticsResponse, error)
}

// DateRangeQuery bounds reports by date, both ends inclusive.
type DateRangeQuery struct {
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// InventoryHandler handles products and the stock movement ledger
type InventoryHandler struct {
	BaseHandler
	service InventoryService
}

func NewInventoryHandler(service InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// CreateProduct godoc
// @ID           createProduct
// @Summary      Create a product
// @Description  Codes are unique per company and stored uppercase.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appinventory.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[appinventory.ProductResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /companies/{companyId}/inventory/products [post]
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appinventory.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	product, err := h.service.CreateProduct(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// ListProducts godoc
// @ID           listProducts
// @Summary      List products
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        search query string false "Code or name"
// @Param        category query string false "Category"
// @Param        status query string false "active or inactive"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appinventory.ProductResponse]
// @Router       /companies/{companyId}/inventory/products [get]
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appinventory.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	products, total, err := h.service.ListProducts(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// GetProduct godoc
// @ID           getProduct
// @Summary      Get a product
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[appinventory.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/inventory/products/{id} [get]
func (h *InventoryHandler) GetProduct(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.service.GetProduct(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateProduct godoc
// @ID           updateProduct
// @Summary      Update a product
// @Description  Stock levels change only through movements.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Product ID"
// @Param        request body appinventory.UpdateProductRequest true "Product"
// @Success      200 {object} APIResponse[appinventory.ProductResponse]
// @Router       /companies/{companyId}/inventory/products/{id} [put]
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appinventory.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.service.UpdateProduct(c.Request.Context(), tenantID, companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DeleteProduct godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Description  Rejected while stock is on hand.
// @Tags         inventory
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/inventory/products/{id} [delete]
func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), tenantID, companyID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// LowStock godoc
// @ID           listLowStockProducts
// @Summary      Products at or below their minimum stock
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Success      200 {object} APIResponse[[]appinventory.ProductResponse]
// @Router       /companies/{companyId}/inventory/products/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	products, err := h.service.LowStock(c.Request.Context(), tenantID, companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// RecordMovement godoc
// @ID           recordStockMovement
// @Summary      Record a stock movement
// @Description  Issues and scrap that would drive stock negative fail with INSUFFICIENT_STOCK.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appinventory.RecordMovementRequest true "Movement"
// @Success      201 {object} APIResponse[appinventory.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appinventory.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	movement, err := h.service.RecordMovement(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// ListMovements godoc
// @ID           listStockMovements
// @Summary      List stock movements
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        product_id query string false "Product ID"
// @Param        type query string false "Movement type"
// @Param        from_date query string false "YYYY-MM-DD"
// @Param        to_date query string false "YYYY-MM-DD"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appinventory.MovementResponse]
// @Router       /companies/{companyId}/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appinventory.MovementListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	movements, total, err := h.service.ListMovements(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// MovementAnalytics godoc
// @ID           getStockMovementAnalytics
// @Summary      Movement counts and quantities per type
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        from_date query string false "YYYY-MM-DD"
// @Param        to_date query string false "YYYY-MM-DD"
// @Success      200 {object} APIResponse[appinventory.MovementAnalyticsResponse]
// @Router       /companies/{companyId}/inventory/movements/analytics [get]
func (h *InventoryHandler) MovementAnalytics(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var q DateRangeQuery
	if !h.BindQuery(c, &q) {
		return
	}
	analytics, err := h.service.MovementAnalytics(c.Request.Context(), tenantID, companyID, q.FromDate, q.ToDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analytics)
}

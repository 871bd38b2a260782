package handler

import (
	"context"

	appprocurement "github.com/documentiulia/backend/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PurchaseOrderService interface {
	Create(ctx context.Context, tenantID, companyID uuid.UUID, req appprocurement.CreatePurchaseOrderRequest) (*appprocurement.PurchaseOrderResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter appprocurement.PurchaseOrderListFilter) ([]appprocurement.PurchaseOrderResponse, int64, error)
	Update(ctx context.Context, tenantID, companyID, id uuid.UUID, req appprocurement.UpdatePurchaseOrderRequest) (*appprocurement.PurchaseOrderResponse, error)
	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
	Submit(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	Approve(ctx context.Context, tenantID, companyID, id, approverID uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	Reject(ctx context.Context, tenantID, companyID, id uuid.UUID, req appprocurement.ReasonRequest) (*appprocurement.PurchaseOrderResponse, error)
	Send(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	Acknowledge(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	MarkInvoiced(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	Close(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	Cancel(ctx context.Context, tenantID, companyID, id uuid.UUID, req appprocurement.ReasonRequest) (*appprocurement.PurchaseOrderResponse, error)
	Receive(ctx context.Context, tenantID, companyID, id uuid.UUID, req appprocurement.ReceiveRequest) (*appprocurement.ReceiveResponse, error)
}

// PurchaseOrderHandler handles purchase orders and goods receipt
type PurchaseOrderHandler struct {
	BaseHandler
	service PurchaseOrderService
}

func NewPurchaseOrderHandler(service PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

type purchaseOrderAction func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)

// Create godoc
// @ID           createPurchaseOrder
// @Summary      Create a draft purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appprocurement.CreatePurchaseOrderRequest true "Purchase order"
// @Success      201 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /companies/{companyId}/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appprocurement.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	po, err := h.service.Create(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, po)
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        search query string false "Number or supplier"
// @Param        status query string false "Status"
// @Param        from_date query string false "YYYY-MM-DD"
// @Param        to_date query string false "YYYY-MM-DD"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appprocurement.PurchaseOrderResponse]
// @Router       /companies/{companyId}/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appprocurement.PurchaseOrderListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	orders, total, err := h.service.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getPurchaseOrder
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	h.withOrder(c, h.service.GetByID)
}

// Update godoc
// @ID           updatePurchaseOrder
// @Summary      Replace a draft purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Param        request body appprocurement.UpdatePurchaseOrderRequest true "Purchase order"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	var req appprocurement.UpdatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withOrder(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error) {
		return h.service.Update(ctx, tenantID, companyID, id, req)
	})
}

// Delete godoc
// @ID           deletePurchaseOrder
// @Summary      Delete a draft purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), tenantID, companyID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Submit godoc
// @ID           submitPurchaseOrder
// @Summary      Submit a draft for approval
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/purchase-orders/{id}/submit [post]
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.withOrder(c, h.service.Submit)
}

// Approve godoc
// @ID           approvePurchaseOrder
// @Summary      Approve a submitted purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.withOrder(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error) {
		return h.service.Approve(ctx, tenantID, companyID, id, userID)
	})
}

// Reject godoc
// @ID           rejectPurchaseOrder
// @Summary      Reject a submitted purchase order back to draft
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Param        request body appprocurement.ReasonRequest false "Reason"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Router       /companies/{companyId}/purchase-orders/{id}/reject [post]
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	req, ok := h.bindReason(c)
	if !ok {
		return
	}
	h.withOrder(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error) {
		return h.service.Reject(ctx, tenantID, companyID, id, req)
	})
}

// Send godoc
// @ID           sendPurchaseOrder
// @Summary      Mark an approved purchase order as sent to the supplier
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Router       /companies/{companyId}/purchase-orders/{id}/send [post]
func (h *PurchaseOrderHandler) Send(c *gin.Context) {
	h.withOrder(c, h.service.Send)
}

// Acknowledge godoc
// @ID           acknowledgePurchaseOrder
// @Summary      Record the supplier's confirmation
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Router       /companies/{companyId}/purchase-orders/{id}/acknowledge [post]
func (h *PurchaseOrderHandler) Acknowledge(c *gin.Context) {
	h.withOrder(c, h.service.Acknowledge)
}

// Receive godoc
// @ID           receivePurchaseOrder
// @Summary      Receive goods against order lines
// @Description  Lines linked to a product post a receipt movement to stock.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Param        request body appprocurement.ReceiveRequest true "Received quantities"
// @Success      200 {object} APIResponse[appprocurement.ReceiveResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appprocurement.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Receive(c.Request.Context(), tenantID, companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// MarkInvoiced godoc
// @ID           markPurchaseOrderInvoiced
// @Summary      Mark a received purchase order as invoiced
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Router       /companies/{companyId}/purchase-orders/{id}/invoiced [post]
func (h *PurchaseOrderHandler) MarkInvoiced(c *gin.Context) {
	h.withOrder(c, h.service.MarkInvoiced)
}

// Close godoc
// @ID           closePurchaseOrder
// @Summary      Close a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Router       /companies/{companyId}/purchase-orders/{id}/close [post]
func (h *PurchaseOrderHandler) Close(c *gin.Context) {
	h.withOrder(c, h.service.Close)
}

// Cancel godoc
// @ID           cancelPurchaseOrder
// @Summary      Cancel a purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Purchase order ID"
// @Param        request body appprocurement.ReasonRequest false "Reason"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	req, ok := h.bindReason(c)
	if !ok {
		return
	}
	h.withOrder(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appprocurement.PurchaseOrderResponse, error) {
		return h.service.Cancel(ctx, tenantID, companyID, id, req)
	})
}

func (h *PurchaseOrderHandler) bindReason(c *gin.Context) (appprocurement.ReasonRequest, bool) {
	var req appprocurement.ReasonRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	return req, h.BindJSON(c, &req)
}

func (h *PurchaseOrderHandler) withOrder(c *gin.Context, action purchaseOrderAction) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	po, err := action(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

package handler

import (
	"context"
	"net/http"

	appinvoice "github.com/documentiulia/backend/internal/application/invoice"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoiceService interface {
	Create(ctx context.Context, tenantID, companyID uuid.UUID, req appinvoice.CreateInvoiceRequest) (*appinvoice.InvoiceResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.InvoiceResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter appinvoice.InvoiceListFilter) ([]appinvoice.InvoiceListResponse, int64, error)
	Update(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req appinvoice.UpdateInvoiceRequest) (*appinvoice.InvoiceResponse, error)
	Delete(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) error
	SubmitForApproval(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.InvoiceResponse, error)
	Approve(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.InvoiceResponse, error)
	MarkPaid(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req appinvoice.MarkPaidRequest) (*appinvoice.InvoiceResponse, error)
	Cancel(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, req appinvoice.CancelRequest) (*appinvoice.InvoiceResponse, error)
	AvailableTransitions(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.TransitionsResponse, error)
	Summary(ctx context.Context, tenantID, companyID uuid.UUID, filter appinvoice.SummaryFilter) (*appinvoice.SummaryResponse, error)
	Overdue(ctx context.Context, tenantID, companyID uuid.UUID) ([]appinvoice.InvoiceListResponse, error)
	PDF(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) ([]byte, string, error)
	BulkStatus(ctx context.Context, tenantID, companyID uuid.UUID, req appinvoice.BulkStatusRequest) (*appinvoice.BulkResult, error)
	BulkDelete(ctx context.Context, tenantID, companyID uuid.UUID, req appinvoice.BulkDeleteRequest) (*appinvoice.BulkResult, error)
}

// InvoiceHandler handles invoices, their status transitions and bulk operations
type InvoiceHandler struct {
	BaseHandler
	service InvoiceService
}

func NewInvoiceHandler(service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Creates a draft. Totals are computed per line at 2 decimals. A missing number is generated from the series; a missing exchange rate is fetched from BNR.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appinvoice.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appinvoice.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	inv, err := h.service.Create(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        search query string false "Number or partner name"
// @Param        status query string false "Status"
// @Param        type query string false "issued or received"
// @Param        client_id query string false "Client ID"
// @Param        from_date query string false "Issue date from (YYYY-MM-DD)"
// @Param        to_date query string false "Issue date to (YYYY-MM-DD)"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appinvoice.InvoiceListResponse]
// @Router       /companies/{companyId}/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appinvoice.InvoiceListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	invoices, total, err := h.service.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	h.withInvoice(c, h.service.GetByID)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Param        request body appinvoice.UpdateInvoiceRequest true "Invoice"
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req appinvoice.UpdateInvoiceRequest
	h.withInvoiceBody(c, &req, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appinvoice.InvoiceResponse, error) {
		return h.service.Update(ctx, tenantID, companyID, id, req)
	})
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete a draft invoice
// @Tags         invoices
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
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

// SubmitForApproval godoc
// @ID           submitInvoiceForApproval
// @Summary      Submit a draft for approval
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      422 {object} ErrorResponse "INVALID_TRANSITION in error.details"
// @Router       /companies/{companyId}/invoices/{id}/submit [post]
func (h *InvoiceHandler) SubmitForApproval(c *gin.Context) {
	h.withInvoice(c, h.service.SubmitForApproval)
}

// Approve godoc
// @ID           approveInvoice
// @Summary      Approve an invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/{id}/approve [post]
func (h *InvoiceHandler) Approve(c *gin.Context) {
	h.withInvoice(c, h.service.Approve)
}

// MarkPaid godoc
// @ID           markInvoicePaid
// @Summary      Mark an invoice paid
// @Description  paid_at defaults to today.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Param        request body appinvoice.MarkPaidRequest false "Payment date"
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	var req appinvoice.MarkPaidRequest
	// The body is optional.
	if c.Request.ContentLength != 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}
	h.withInvoice(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appinvoice.InvoiceResponse, error) {
		return h.service.MarkPaid(ctx, tenantID, companyID, id, req)
	})
}

// Cancel godoc
// @ID           cancelInvoice
// @Summary      Cancel an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Param        request body appinvoice.CancelRequest true "Reason"
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	var req appinvoice.CancelRequest
	h.withInvoiceBody(c, &req, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appinvoice.InvoiceResponse, error) {
		return h.service.Cancel(ctx, tenantID, companyID, id, req)
	})
}

// Transitions godoc
// @ID           getInvoiceTransitions
// @Summary      Available status transitions
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[appinvoice.TransitionsResponse]
// @Router       /companies/{companyId}/invoices/{id}/transitions [get]
func (h *InvoiceHandler) Transitions(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	transitions, err := h.service.AvailableTransitions(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transitions)
}

// Summary godoc
// @ID           getInvoiceSummary
// @Summary      Invoice summary
// @Description  Count and totals per status over a period, the current month by default.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        from_date query string false "YYYY-MM-DD"
// @Param        to_date query string false "YYYY-MM-DD"
// @Success      200 {object} APIResponse[appinvoice.SummaryResponse]
// @Router       /companies/{companyId}/invoices/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appinvoice.SummaryFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Overdue godoc
// @ID           listOverdueInvoices
// @Summary      Overdue invoices
// @Description  Due before today and neither paid nor cancelled.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Success      200 {object} APIResponse[[]appinvoice.InvoiceListResponse]
// @Router       /companies/{companyId}/invoices/overdue [get]
func (h *InvoiceHandler) Overdue(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	invoices, err := h.service.Overdue(c.Request.Context(), tenantID, companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// PDF godoc
// @ID           getInvoicePDF
// @Summary      Render the invoice as PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      200 {file} binary
// @Failure      503 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	pdf, fileName, err := h.service.PDF(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// BulkStatus godoc
// @ID           bulkUpdateInvoiceStatus
// @Summary      Change the status of many invoices
// @Description  Each id is processed on its own; failures never roll back other items. Duplicate ids count once.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appinvoice.BulkStatusRequest true "Ids and target status"
// @Success      200 {object} APIResponse[appinvoice.BulkResult]
// @Failure      400 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/bulk/status [post]
func (h *InvoiceHandler) BulkStatus(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appinvoice.BulkStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.BulkStatus(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BulkDelete godoc
// @ID           bulkDeleteInvoices
// @Summary      Delete many draft invoices
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appinvoice.BulkDeleteRequest true "Ids"
// @Success      200 {object} APIResponse[appinvoice.BulkResult]
// @Failure      400 {object} ErrorResponse
// @Router       /companies/{companyId}/invoices/bulk/delete [post]
func (h *InvoiceHandler) BulkDelete(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appinvoice.BulkDeleteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.BulkDelete(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

type invoiceAction func(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID) (*appinvoice.InvoiceResponse, error)

func (h *InvoiceHandler) withInvoice(c *gin.Context, action invoiceAction) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	inv, err := action(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// withInvoiceBody binds req before running action; the closure reads req.
func (h *InvoiceHandler) withInvoiceBody(c *gin.Context, req any, action invoiceAction) {
	if !h.BindJSON(c, req) {
		return
	}
	h.withInvoice(c, action)
}

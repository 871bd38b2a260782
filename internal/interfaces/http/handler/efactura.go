package handler

import (
	"context"

	appefactura "github.com/documentiulia/backend/internal/application/efactura"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EFacturaService interface {
	Submit(ctx context.Context, tenantID, companyID uuid.UUID, req appefactura.SubmitRequest) (*appefactura.SubmissionResponse, error)
	Resubmit(ctx context.Context, tenantID, companyID, submissionID uuid.UUID) (*appefactura.SubmissionResponse, error)
	Batch(ctx context.Context, tenantID, companyID uuid.UUID, req appefactura.BatchSubmitRequest) (*appefactura.BatchResult, error)
	GetByID(ctx context.Context, tenantID, companyID, submissionID uuid.UUID) (*appefactura.SubmissionResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter appefactura.SubmissionListFilter) ([]appefactura.SubmissionResponse, int64, error)
	Check(ctx context.Context, tenantID, companyID, submissionID uuid.UUID) (*appefactura.SubmissionResponse, error)
	Sync(ctx context.Context, tenantID, companyID uuid.UUID) (*appefactura.SyncResult, error)
	Analytics(ctx context.Context, tenantID, companyID uuid.UUID, filter appefactura.AnalyticsFilter) (*appefactura.AnalyticsResponse, error)
	XMLURL(ctx context.Context, tenantID, companyID, submissionID uuid.UUID) (*appefactura.XMLURLResponse, error)
}

// EFacturaHandler exposes ANAF e-Factura submission and status tracking
type EFacturaHandler struct {
	BaseHandler
	service EFacturaService
}

func NewEFacturaHandler(service EFacturaService) *EFacturaHandler {
	return &EFacturaHandler{service: service}
}

// Submit godoc
// @ID           submitEFactura
// @Summary      Submit an invoice to ANAF
// @Description  Generates the UBL XML, stores it and uploads it with retries. An invoice already processing or accepted is returned unchanged unless force is set.
// @Tags         efactura
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appefactura.SubmitRequest true "Invoice to submit"
// @Success      200 {object} APIResponse[appefactura.SubmissionResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/efactura/submissions [post]
func (h *EFacturaHandler) Submit(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appefactura.SubmitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	submission, err := h.service.Submit(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, submission)
}

// Batch godoc
// @ID           batchSubmitEFactura
// @Summary      Submit many invoices
// @Description  Items are processed in order. With continue_on_error=false the rest are reported as skipped after the first failure.
// @Tags         efactura
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appefactura.BatchSubmitRequest true "Invoices"
// @Success      200 {object} APIResponse[appefactura.BatchResult]
// @Router       /companies/{companyId}/efactura/submissions/batch [post]
func (h *EFacturaHandler) Batch(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appefactura.BatchSubmitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Batch(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
// @ID           listEFacturaSubmissions
// @Summary      List submissions
// @Tags         efactura
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        status query string false "pending, processing, accepted, rejected or error"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appefactura.SubmissionResponse]
// @Router       /companies/{companyId}/efactura/submissions [get]
func (h *EFacturaHandler) List(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appefactura.SubmissionListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	submissions, total, err := h.service.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, submissions, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getEFacturaSubmission
// @Summary      Get a submission
// @Tags         efactura
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Submission ID"
// @Success      200 {object} APIResponse[appefactura.SubmissionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/efactura/submissions/{id} [get]
func (h *EFacturaHandler) Get(c *gin.Context) {
	h.withSubmission(c, h.service.GetByID)
}

// Check godoc
// @ID           checkEFacturaSubmission
// @Summary      Query ANAF for the submission status
// @Tags         efactura
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Submission ID"
// @Success      200 {object} APIResponse[appefactura.SubmissionResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/efactura/submissions/{id}/check [post]
func (h *EFacturaHandler) Check(c *gin.Context) {
	h.withSubmission(c, h.service.Check)
}

// Resubmit godoc
// @ID           resubmitEFactura
// @Summary      Resubmit a failed or rejected submission
// @Tags         efactura
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Submission ID"
// @Success      200 {object} APIResponse[appefactura.SubmissionResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/efactura/submissions/{id}/resubmit [post]
func (h *EFacturaHandler) Resubmit(c *gin.Context) {
	h.withSubmission(c, h.service.Resubmit)
}

// XML godoc
// @ID           getEFacturaXML
// @Summary      Download URL of the submitted XML
// @Tags         efactura
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Submission ID"
// @Success      200 {object} APIResponse[appefactura.XMLURLResponse]
// @Router       /companies/{companyId}/efactura/submissions/{id}/xml [get]
func (h *EFacturaHandler) XML(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	url, err := h.service.XMLURL(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}

// Sync godoc
// @ID           syncEFactura
// @Summary      Sync processing submissions
// @Description  Checks up to 100 processing submissions, newest first. Failures of single items are counted, not returned.
// @Tags         efactura
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Success      200 {object} APIResponse[appefactura.SyncResult]
// @Router       /companies/{companyId}/efactura/sync [post]
func (h *EFacturaHandler) Sync(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	result, err := h.service.Sync(c.Request.Context(), tenantID, companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Analytics godoc
// @ID           getEFacturaAnalytics
// @Summary      Submission analytics
// @Description  Counts per status and success rate, over the last 30 days by default.
// @Tags         efactura
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        days query int false "Period length in days" default(30)
// @Success      200 {object} APIResponse[appefactura.AnalyticsResponse]
// @Router       /companies/{companyId}/efactura/analytics [get]
func (h *EFacturaHandler) Analytics(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appefactura.AnalyticsFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	analytics, err := h.service.Analytics(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analytics)
}

func (h *EFacturaHandler) withSubmission(c *gin.Context, action func(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*appefactura.SubmissionResponse, error)) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	submission, err := action(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, submission)
}

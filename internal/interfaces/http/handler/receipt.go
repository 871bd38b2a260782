package handler

import (
	"context"

	appreceipt "github.com/documentiulia/backend/internal/application/receipt"
	"github.com/documentiulia/backend/internal/domain/receipt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReceiptService interface {
	Create(ctx context.Context, tenantID, companyID uuid.UUID, req appreceipt.ReceiptRequest) (*appreceipt.ReceiptResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appreceipt.ReceiptResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter appreceipt.ReceiptListFilter) ([]appreceipt.ReceiptResponse, int64, error)
	Update(ctx context.Context, tenantID, companyID, id uuid.UUID, req appreceipt.ReceiptRequest) (*appreceipt.ReceiptResponse, error)
	UploadURL(ctx context.Context, tenantID, companyID, id uuid.UUID, req appreceipt.UploadURLRequest) (*appreceipt.UploadURLResponse, error)
	ConfirmUpload(ctx context.Context, tenantID, companyID, id uuid.UUID, req appreceipt.ConfirmUploadRequest) (*appreceipt.ReceiptResponse, error)
	Upload(ctx context.Context, tenantID, companyID, id uuid.UUID, fileName string, data []byte) (*appreceipt.ReceiptResponse, error)
	Verify(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appreceipt.ReceiptResponse, error)
	Reject(ctx context.Context, tenantID, companyID, id uuid.UUID, req appreceipt.RejectRequest) (*appreceipt.ReceiptResponse, error)
	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}

// ReceiptHandler handles expense receipts and their scans
type ReceiptHandler struct {
	BaseHandler
	service ReceiptService
}

func NewReceiptHandler(service ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{service: service}
}

// Create godoc
// @ID           createReceipt
// @Summary      Record a receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appreceipt.ReceiptRequest true "Receipt"
// @Success      201 {object} APIResponse[appreceipt.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appreceipt.ReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	r, err := h.service.Create(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// List godoc
// @ID           listReceipts
// @Summary      List receipts
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        search query string false "Vendor or number"
// @Param        status query string false "uploaded, verified or rejected"
// @Param        category query string false "Category"
// @Param        from_date query string false "YYYY-MM-DD"
// @Param        to_date query string false "YYYY-MM-DD"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appreceipt.ReceiptResponse]
// @Router       /companies/{companyId}/receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appreceipt.ReceiptListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	receipts, total, err := h.service.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, receipts, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getReceipt
// @Summary      Get a receipt
// @Description  The response carries a short-lived download URL when a scan is attached.
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Receipt ID"
// @Success      200 {object} APIResponse[appreceipt.ReceiptResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts/{id} [get]
func (h *ReceiptHandler) Get(c *gin.Context) {
	h.withReceipt(c, h.service.GetByID)
}

// Update godoc
// @ID           updateReceipt
// @Summary      Update a receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Receipt ID"
// @Param        request body appreceipt.ReceiptRequest true "Receipt"
// @Success      200 {object} APIResponse[appreceipt.ReceiptResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts/{id} [put]
func (h *ReceiptHandler) Update(c *gin.Context) {
	var req appreceipt.ReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withReceipt(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appreceipt.ReceiptResponse, error) {
		return h.service.Update(ctx, tenantID, companyID, id, req)
	})
}

// Delete godoc
// @ID           deleteReceipt
// @Summary      Delete a receipt and its scan
// @Tags         receipts
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Receipt ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts/{id} [delete]
func (h *ReceiptHandler) Delete(c *gin.Context) {
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

// UploadURL godoc
// @ID           createReceiptUploadURL
// @Summary      Get a presigned URL for uploading the scan
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Receipt ID"
// @Param        request body appreceipt.UploadURLRequest true "File metadata"
// @Success      200 {object} APIResponse[appreceipt.UploadURLResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts/{id}/upload-url [post]
func (h *ReceiptHandler) UploadURL(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appreceipt.UploadURLRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upload, err := h.service.UploadURL(c.Request.Context(), tenantID, companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// ConfirmUpload godoc
// @ID           confirmReceiptUpload
// @Summary      Attach a scan uploaded through a presigned URL
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Receipt ID"
// @Param        request body appreceipt.ConfirmUploadRequest true "Uploaded object"
// @Success      200 {object} APIResponse[appreceipt.ReceiptResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts/{id}/confirm-upload [post]
func (h *ReceiptHandler) ConfirmUpload(c *gin.Context) {
	var req appreceipt.ConfirmUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withReceipt(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appreceipt.ReceiptResponse, error) {
		return h.service.ConfirmUpload(ctx, tenantID, companyID, id, req)
	})
}

// Upload godoc
// @ID           uploadReceiptFile
// @Summary      Upload the scan directly
// @Description  JPEG, PNG, WebP or PDF up to 10MB. The type is detected from the content.
// @Tags         receipts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Receipt ID"
// @Param        file formData file true "Scan"
// @Success      200 {object} APIResponse[appreceipt.ReceiptResponse]
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts/{id}/upload [post]
func (h *ReceiptHandler) Upload(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	fileName, data, ok := h.readFormFile(c, "file", receipt.MaxFileSize)
	if !ok {
		return
	}
	r, err := h.service.Upload(c.Request.Context(), tenantID, companyID, id, fileName, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Verify godoc
// @ID           verifyReceipt
// @Summary      Mark a receipt as verified
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Receipt ID"
// @Success      200 {object} APIResponse[appreceipt.ReceiptResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts/{id}/verify [post]
func (h *ReceiptHandler) Verify(c *gin.Context) {
	h.withReceipt(c, h.service.Verify)
}

// Reject godoc
// @ID           rejectReceipt
// @Summary      Reject a receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Receipt ID"
// @Param        request body appreceipt.RejectRequest true "Reason"
// @Success      200 {object} APIResponse[appreceipt.ReceiptResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/receipts/{id}/reject [post]
func (h *ReceiptHandler) Reject(c *gin.Context) {
	var req appreceipt.RejectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withReceipt(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appreceipt.ReceiptResponse, error) {
		return h.service.Reject(ctx, tenantID, companyID, id, req)
	})
}

func (h *ReceiptHandler) withReceipt(c *gin.Context, action func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appreceipt.ReceiptResponse, error)) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	r, err := action(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

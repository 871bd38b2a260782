package handler

import (
	"bytes"
	"context"
	"io"

	appdataexchange "github.com/documentiulia/backend/internal/application/dataexchange"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExportService interface {
	Create(ctx context.Context, tenantID, companyID uuid.UUID, createdBy *uuid.UUID, req appdataexchange.CreateExportRequest) (*appdataexchange.ExportJobResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appdataexchange.ExportJobResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter appdataexchange.ExportListFilter) ([]appdataexchange.ExportJobResponse, int64, error)
	Download(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appdataexchange.DownloadResponse, error)
	Cancel(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appdataexchange.ExportJobResponse, error)
}

type ImportService interface {
	Import(ctx context.Context, tenantID, companyID uuid.UUID, createdBy *uuid.UUID, req appdataexchange.ImportRequest, fileName string, size int64, file io.Reader) (*appdataexchange.ImportJobResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appdataexchange.ImportJobResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter appdataexchange.ImportListFilter) ([]appdataexchange.ImportJobResponse, int64, error)
}

// DataExchangeHandler handles background exports and CSV imports
type DataExchangeHandler struct {
	BaseHandler
	exports ExportService
	imports ImportService
}

func NewDataExchangeHandler(exports ExportService, imports ImportService) *DataExchangeHandler {
	return &DataExchangeHandler{exports: exports, imports: imports}
}

// CreateExport godoc
// @ID           createExport
// @Summary      Queue an export
// @Description  The file is produced in the background. Poll the job, then download it.
// @Tags         data-exchange
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appdataexchange.CreateExportRequest true "Export"
// @Success      202 {object} APIResponse[appdataexchange.ExportJobResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /companies/{companyId}/exports [post]
func (h *DataExchangeHandler) CreateExport(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appdataexchange.CreateExportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	job, err := h.exports.Create(c.Request.Context(), tenantID, companyID, userPtr(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, job)
}

// ListExports godoc
// @ID           listExports
// @Summary      List export jobs
// @Tags         data-exchange
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        status query string false "Status"
// @Param        entity query string false "Entity"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appdataexchange.ExportJobResponse]
// @Router       /companies/{companyId}/exports [get]
func (h *DataExchangeHandler) ListExports(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appdataexchange.ExportListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	jobs, total, err := h.exports.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, jobs, total, filter.Page, filter.PageSize)
}

// GetExport godoc
// @ID           getExport
// @Summary      Get an export job
// @Tags         data-exchange
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Export ID"
// @Success      200 {object} APIResponse[appdataexchange.ExportJobResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/exports/{id} [get]
func (h *DataExchangeHandler) GetExport(c *gin.Context) {
	h.withExport(c, h.exports.GetByID)
}

// DownloadExport godoc
// @ID           downloadExport
// @Summary      Get a download URL for a completed export
// @Tags         data-exchange
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Export ID"
// @Success      200 {object} APIResponse[appdataexchange.DownloadResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/exports/{id}/download [get]
func (h *DataExchangeHandler) DownloadExport(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	download, err := h.exports.Download(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, download)
}

// CancelExport godoc
// @ID           cancelExport
// @Summary      Cancel a pending export
// @Tags         data-exchange
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Export ID"
// @Success      200 {object} APIResponse[appdataexchange.ExportJobResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/exports/{id}/cancel [post]
func (h *DataExchangeHandler) CancelExport(c *gin.Context) {
	h.withExport(c, h.exports.Cancel)
}

// Import godoc
// @ID           importCSV
// @Summary      Import clients or products from CSV
// @Description  Runs synchronously and reports per-row errors. Files are limited to 5MB.
// @Tags         data-exchange
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        file formData file true "CSV file"
// @Param        entity formData string true "clients or products"
// @Param        conflict_mode formData string false "skip, update or fail"
// @Success      201 {object} APIResponse[appdataexchange.ImportJobResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /companies/{companyId}/imports [post]
func (h *DataExchangeHandler) Import(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appdataexchange.ImportRequest
	if !h.BindForm(c, &req) {
		return
	}
	fileName, data, ok := h.readFormFile(c, "file", appdataexchange.MaxImportSize)
	if !ok {
		return
	}
	job, err := h.imports.Import(c.Request.Context(), tenantID, companyID, userPtr(c), req, fileName, int64(len(data)), bytes.NewReader(data))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, job)
}

// ListImports godoc
// @ID           listImports
// @Summary      List import jobs
// @Tags         data-exchange
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        status query string false "completed or failed"
// @Param        entity query string false "Entity"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appdataexchange.ImportJobResponse]
// @Router       /companies/{companyId}/imports [get]
func (h *DataExchangeHandler) ListImports(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appdataexchange.ImportListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	jobs, total, err := h.imports.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, jobs, total, filter.Page, filter.PageSize)
}

// GetImport godoc
// @ID           getImport
// @Summary      Get an import job with its row errors
// @Tags         data-exchange
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Import ID"
// @Success      200 {object} APIResponse[appdataexchange.ImportJobResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/imports/{id} [get]
func (h *DataExchangeHandler) GetImport(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.imports.GetByID(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

func (h *DataExchangeHandler) withExport(c *gin.Context, action func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*appdataexchange.ExportJobResponse, error)) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	job, err := action(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

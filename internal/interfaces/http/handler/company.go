package handler

import (
	"context"

	appcompany "github.com/documentiulia/backend/internal/application/company"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompanyService is the company use case surface the handler needs
type CompanyService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req appcompany.CreateCompanyRequest) (*appcompany.CompanyResponse, error)
	GetByID(ctx context.Context, tenantID, companyID uuid.UUID) (*appcompany.CompanyResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appcompany.CompanyListFilter) ([]appcompany.CompanyResponse, int64, error)
	Update(ctx context.Context, tenantID, companyID uuid.UUID, req appcompany.UpdateCompanyRequest) (*appcompany.CompanyResponse, error)
	Activate(ctx context.Context, tenantID, companyID uuid.UUID) (*appcompany.CompanyResponse, error)
	Deactivate(ctx context.Context, tenantID, companyID uuid.UUID) (*appcompany.CompanyResponse, error)
	Delete(ctx context.Context, tenantID, companyID uuid.UUID) error
}

// CompanyHandler handles company-related HTTP requests
type CompanyHandler struct {
	BaseHandler
	service CompanyService
}

func NewCompanyHandler(service CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// Create godoc
// @ID           createCompany
// @Summary      Register a company
// @Description  Adds a company to the caller's account. The CUI is validated and unique per account.
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appcompany.CreateCompanyRequest true "Company"
// @Success      201 {object} APIResponse[appcompany.CompanyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var req appcompany.CreateCompanyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	company, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// List godoc
// @ID           listCompanies
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Name or CUI"
// @Param        status query string false "active or inactive"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appcompany.CompanyResponse]
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var filter appcompany.CompanyListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	companies, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, companies, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getCompany
// @Summary      Get a company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Success      200 {object} APIResponse[appcompany.CompanyResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	company, err := h.service.GetByID(c.Request.Context(), tenantID, companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Update godoc
// @ID           updateCompany
// @Summary      Update a company
// @Description  The CUI cannot change after registration.
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appcompany.UpdateCompanyRequest true "Company"
// @Success      200 {object} APIResponse[appcompany.CompanyResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /companies/{companyId} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appcompany.UpdateCompanyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	company, err := h.service.Update(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Activate godoc
// @ID           activateCompany
// @Summary      Activate a company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Success      200 {object} APIResponse[appcompany.CompanyResponse]
// @Router       /companies/{companyId}/activate [post]
func (h *CompanyHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.service.Activate)
}

// Deactivate godoc
// @ID           deactivateCompany
// @Summary      Deactivate a company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Success      200 {object} APIResponse[appcompany.CompanyResponse]
// @Router       /companies/{companyId}/deactivate [post]
func (h *CompanyHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.service.Deactivate)
}

func (h *CompanyHandler) changeStatus(c *gin.Context, change func(context.Context, uuid.UUID, uuid.UUID) (*appcompany.CompanyResponse, error)) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	company, err := change(c.Request.Context(), tenantID, companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Delete godoc
// @ID           deleteCompany
// @Summary      Delete a company
// @Description  Rejected while the company still has invoices.
// @Tags         companies
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), tenantID, companyID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

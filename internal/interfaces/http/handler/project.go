package handler

import (
	"context"

	appproject "github.com/documentiulia/backend/internal/application/project"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectService interface {
	Create(ctx context.Context, tenantID, companyID uuid.UUID, req appproject.CreateProjectRequest) (*appproject.ProjectResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, projectID uuid.UUID) (*appproject.ProjectResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter appproject.ProjectListFilter) ([]appproject.ProjectResponse, int64, error)
	Update(ctx context.Context, tenantID, companyID, projectID uuid.UUID, req appproject.UpdateProjectRequest) (*appproject.ProjectResponse, error)
	Delete(ctx context.Context, tenantID, companyID, projectID uuid.UUID) error
}

// ProjectHandler serves the project REST surface
type ProjectHandler struct {
	BaseHandler
	service ProjectService
}

func NewProjectHandler(service ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// List godoc
// @ID           listProjects
// @Summary      List projects
// @Description  Paginated list with search, enum filters and ordering.
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        search query string false "Name or description"
// @Param        status query string false "planning, active, on_hold, completed, cancelled or archived"
// @Param        health_status query string false "on_track, at_risk or off_track"
// @Param        methodology query string false "agile, scrum, kanban, waterfall or hybrid"
// @Param        priority query string false "low, medium, high or critical"
// @Param        client_id query string false "Client ID"
// @Param        order_by query string false "name, status, priority, start_date, end_date, created_at"
// @Param        order_dir query string false "asc or desc"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appproject.ProjectResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /companies/{companyId}/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appproject.ProjectListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	projects, total, err := h.service.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, projects, total, filter.Page, filter.PageSize)
}

// Create godoc
// @ID           createProject
// @Summary      Create a project
// @Description  Enum fields default to planning, on_track, agile and medium.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appproject.CreateProjectRequest true "Project"
// @Success      201 {object} APIResponse[appproject.ProjectResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /companies/{companyId}/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appproject.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	project, err := h.service.Create(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

// Get godoc
// @ID           getProject
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Project ID"
// @Success      200 {object} APIResponse[appproject.ProjectResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	project, err := h.service.GetByID(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Update godoc
// @ID           updateProject
// @Summary      Update a project
// @Description  Partial update: fields absent from the body keep their value. Archived projects cannot change.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Project ID"
// @Param        request body appproject.UpdateProjectRequest true "Fields to change"
// @Success      200 {object} APIResponse[appproject.ProjectResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appproject.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	project, err := h.service.Update(c.Request.Context(), tenantID, companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Delete godoc
// @ID           deleteProject
// @Summary      Archive a project
// @Description  Soft delete: the project moves to archived.
// @Tags         projects
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Project ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
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

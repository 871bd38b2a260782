package handler

import (
	"context"

	appclient "github.com/documentiulia/backend/internal/application/client"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClientService interface {
	Create(ctx context.Context, tenantID, companyID uuid.UUID, req appclient.CreateClientRequest) (*appclient.ClientResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, clientID uuid.UUID) (*appclient.ClientResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter appclient.ClientListFilter) ([]appclient.ClientResponse, int64, error)
	Update(ctx context.Context, tenantID, companyID, clientID uuid.UUID, req appclient.UpdateClientRequest) (*appclient.ClientResponse, error)
	Delete(ctx context.Context, tenantID, companyID, clientID uuid.UUID) error
}

// ClientHandler handles the clients of a company
type ClientHandler struct {
	BaseHandler
	service ClientService
}

func NewClientHandler(service ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Description  Company clients have their CUI validated.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body appclient.CreateClientRequest true "Client"
// @Success      201 {object} APIResponse[appclient.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /companies/{companyId}/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req appclient.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	client, err := h.service.Create(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        search query string false "Name, CUI or email"
// @Param        type query string false "individual or company"
// @Param        status query string false "active or inactive"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appclient.ClientResponse]
// @Router       /companies/{companyId}/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter appclient.ClientListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	clients, total, err := h.service.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, clients, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[appclient.ClientResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	client, err := h.service.GetByID(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Client ID"
// @Param        request body appclient.UpdateClientRequest true "Client"
// @Success      200 {object} APIResponse[appclient.ClientResponse]
// @Router       /companies/{companyId}/clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appclient.UpdateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}
	client, err := h.service.Update(c.Request.Context(), tenantID, companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete godoc
// @ID           deleteClient
// @Summary      Delete a client
// @Tags         clients
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Client ID"
// @Success      204
// @Router       /companies/{companyId}/clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
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

package client

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/google/uuid"
)

// CreateClientRequest represents a request to create a client of a company
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Type    string `json:"type" binding:"required,oneof=individual company"`
	CUI     string `json:"cui" binding:"omitempty,max=20"`
	RegCom  string `json:"reg_com" binding:"max=50"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
	City    string `json:"city" binding:"max=100"`
	County  string `json:"county" binding:"max=100"`
	Country string `json:"country" binding:"omitempty,len=2"`
	Notes   string `json:"notes"`

	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=200"`
	Type    string  `json:"type" binding:"required,oneof=individual company"`
	CUI     string  `json:"cui" binding:"omitempty,max=20"`
	RegCom  string  `json:"reg_com" binding:"max=50"`
	Email   string  `json:"email" binding:"omitempty,email,max=200"`
	Phone   string  `json:"phone" binding:"max=50"`
	Address string  `json:"address" binding:"max=500"`
	City    string  `json:"city" binding:"max=100"`
	County  string  `json:"county" binding:"max=100"`
	Country string  `json:"country" binding:"omitempty,len=2"`
	Notes   string  `json:"notes"`
	Status  *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ClientListFilter represents filter options for the client list
type ClientListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=individual company"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CUI       string    `json:"cui"`
	RegCom    string    `json:"reg_com"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	County    string    `json:"county"`
	Country   string    `json:"country"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func ToClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		Type:      string(c.Type),
		CUI:       c.CUI,
		RegCom:    c.RegCom,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		City:      c.City,
		County:    c.County,
		Country:   c.Country,
		Notes:     c.Notes,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

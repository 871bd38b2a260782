package project

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/project"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name                 string           `json:"name" binding:"required,min=1,max=200"`
	Description          string           `json:"description"`
	Status               string           `json:"status"`
	HealthStatus         string           `json:"health_status"`
	Methodology          string           `json:"methodology"`
	Priority             string           `json:"priority"`
	ClientID             *uuid.UUID       `json:"client_id"`
	StartDate            string           `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate              string           `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Budget               *decimal.Decimal `json:"budget"`
	Currency             string           `json:"currency"`
	CompletionPercentage *int             `json:"completion_percentage"`
	Tags                 []string         `json:"tags"`
	CustomFields         map[string]any   `json:"custom_fields"`

	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateProjectRequest is a partial update: only fields present in the body change.
// An empty client_id detaches the project from its client.
type UpdateProjectRequest struct {
	Name                 *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description          *string          `json:"description"`
	Status               *string          `json:"status"`
	HealthStatus         *string          `json:"health_status"`
	Methodology          *string          `json:"methodology"`
	Priority             *string          `json:"priority"`
	ClientID             *string          `json:"client_id"`
	StartDate            *string          `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate              *string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Budget               *decimal.Decimal `json:"budget"`
	Currency             *string          `json:"currency"`
	CompletionPercentage *int             `json:"completion_percentage"`
	Tags                 []string         `json:"tags"`
	CustomFields         map[string]any   `json:"custom_fields"`
}

// ProjectListFilter represents filter options for the project list
type ProjectListFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status"`
	HealthStatus string `form:"health_status"`
	Methodology  string `form:"methodology"`
	Priority     string `form:"priority"`
	ClientID     string `form:"client_id" binding:"omitempty,uuid"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID                   uuid.UUID       `json:"id"`
	CompanyID            uuid.UUID       `json:"company_id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Status               string          `json:"status"`
	HealthStatus         string          `json:"health_status"`
	Methodology          string          `json:"methodology"`
	Priority             string          `json:"priority"`
	ClientID             *uuid.UUID      `json:"client_id,omitempty"`
	StartDate            *string         `json:"start_date,omitempty"`
	EndDate              *string         `json:"end_date,omitempty"`
	Budget               decimal.Decimal `json:"budget"`
	Currency             string          `json:"currency"`
	CompletionPercentage int             `json:"completion_percentage"`
	Tags                 []string        `json:"tags"`
	CustomFields         map[string]any  `json:"custom_fields"`
	CreatedBy            *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int             `json:"version"`
}

func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:                   p.ID,
		CompanyID:            p.CompanyID,
		Name:                 p.Name,
		Description:          p.Description,
		Status:               string(p.Status),
		HealthStatus:         string(p.HealthStatus),
		Methodology:          string(p.Methodology),
		Priority:             string(p.Priority),
		ClientID:             p.ClientID,
		StartDate:            formatDate(p.StartDate),
		EndDate:              formatDate(p.EndDate),
		Budget:               p.Budget,
		Currency:             string(p.Currency),
		CompletionPercentage: p.CompletionPercentage,
		Tags:                 p.Tags,
		CustomFields:         p.CustomFields,
		CreatedBy:            p.CreatedBy,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		Version:              p.Version,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// Package project implements the project REST use cases.
package project

import (
	"context"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/documentiulia/backend/internal/domain/project"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientLookup resolves a client inside a company; used to validate client_id.
type ClientLookup interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*client.Client, error)
}

// ProjectService handles project-related business operations
type ProjectService struct {
	projectRepo    project.ProjectRepository
	clients        ClientLookup
	eventPublisher shared.EventPublisher
}

func NewProjectService(projectRepo project.ProjectRepository, clients ClientLookup) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		clients:     clients,
	}
}

func (s *ProjectService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ProjectService) Create(ctx context.Context, tenantID, companyID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	p, err := project.NewProject(tenantID, companyID, req.Name)
	if err != nil {
		return nil, err
	}

	changes, err := createChanges(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, tenantID, companyID, changes.ClientID); err != nil {
		return nil, err
	}
	if err := p.Apply(changes); err != nil {
		return nil, err
	}
	p.CreatedBy = req.CreatedBy

	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, p)

	response := ToProjectResponse(p)
	return &response, nil
}

func (s *ProjectService) GetByID(ctx context.Context, tenantID, companyID, projectID uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, tenantID, companyID, projectID)
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

func (s *ProjectService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = strings.TrimSpace(filter.Search)

	if filter.Status != "" {
		if !project.Status(filter.Status).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown project status: "+filter.Status)
		}
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.HealthStatus != "" {
		if !project.HealthStatus(filter.HealthStatus).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_HEALTH_STATUS", "Unknown health status: "+filter.HealthStatus)
		}
		domainFilter.Filters["health_status"] = filter.HealthStatus
	}
	if filter.Methodology != "" {
		if !project.Methodology(filter.Methodology).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_METHODOLOGY", "Unknown methodology: "+filter.Methodology)
		}
		domainFilter.Filters["methodology"] = filter.Methodology
	}
	if filter.Priority != "" {
		if !project.Priority(filter.Priority).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_PRIORITY", "Unknown priority: "+filter.Priority)
		}
		domainFilter.Filters["priority"] = filter.Priority
	}
	if filter.ClientID != "" {
		id, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "client_id must be a UUID")
		}
		domainFilter.Filters["client_id"] = id
	}

	projects, err := s.projectRepo.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.projectRepo.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = ToProjectResponse(&projects[i])
	}
	return out, total, nil
}

// Update applies only the fields present in the request.
func (s *ProjectService) Update(ctx context.Context, tenantID, companyID, projectID uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, tenantID, companyID, projectID)
	if err != nil {
		return nil, err
	}

	changes, err := updateChanges(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, tenantID, companyID, changes.ClientID); err != nil {
		return nil, err
	}
	if err := p.Apply(changes); err != nil {
		return nil, err
	}

	if err := s.projectRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, p)

	response := ToProjectResponse(p)
	return &response, nil
}

// Delete archives the project; archived projects stay readable.
func (s *ProjectService) Delete(ctx context.Context, tenantID, companyID, projectID uuid.UUID) error {
	p, err := s.projectRepo.FindByID(ctx, tenantID, companyID, projectID)
	if err != nil {
		return err
	}
	if err := p.Archive(); err != nil {
		return err
	}
	if err := s.projectRepo.SaveWithLock(ctx, p); err != nil {
		return err
	}
	s.publishDomainEvents(ctx, p)
	return nil
}

func (s *ProjectService) checkClient(ctx context.Context, tenantID, companyID uuid.UUID, clientID *uuid.UUID) error {
	if clientID == nil || s.clients == nil {
		return nil
	}
	if _, err := s.clients.FindByID(ctx, tenantID, companyID, *clientID); err != nil {
		if shared.ErrorCode(err) == shared.ErrNotFound.Code {
			return shared.NewDomainError("INVALID_CLIENT", "Client does not belong to this company")
		}
		return err
	}
	return nil
}

func (s *ProjectService) publishDomainEvents(ctx context.Context, p *project.Project) {
	if s.eventPublisher == nil {
		return
	}
	if events := p.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		p.ClearDomainEvents()
	}
}

func createChanges(req CreateProjectRequest) (project.Changes, error) {
	ch := project.Changes{
		ClientID:             req.ClientID,
		Budget:               req.Budget,
		CompletionPercentage: req.CompletionPercentage,
		Tags:                 req.Tags,
		CustomFields:         req.CustomFields,
	}
	if req.Description != "" {
		ch.Description = &req.Description
	}
	if req.Status != "" {
		status := project.Status(req.Status)
		ch.Status = &status
	}
	if req.HealthStatus != "" {
		health := project.HealthStatus(req.HealthStatus)
		ch.HealthStatus = &health
	}
	if req.Methodology != "" {
		m := project.Methodology(req.Methodology)
		ch.Methodology = &m
	}
	if req.Priority != "" {
		prio := project.Priority(req.Priority)
		ch.Priority = &prio
	}
	if req.Currency != "" {
		ch.Currency = &req.Currency
	}
	var err error
	if ch.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		return ch, err
	}
	if ch.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
		return ch, err
	}
	return ch, nil
}

func updateChanges(req UpdateProjectRequest) (project.Changes, error) {
	ch := project.Changes{
		Name:                 req.Name,
		Description:          req.Description,
		Budget:               req.Budget,
		Currency:             req.Currency,
		CompletionPercentage: req.CompletionPercentage,
		Tags:                 req.Tags,
		CustomFields:         req.CustomFields,
	}
	if req.Status != nil {
		status := project.Status(*req.Status)
		ch.Status = &status
	}
	if req.HealthStatus != nil {
		health := project.HealthStatus(*req.HealthStatus)
		ch.HealthStatus = &health
	}
	if req.Methodology != nil {
		m := project.Methodology(*req.Methodology)
		ch.Methodology = &m
	}
	if req.Priority != nil {
		prio := project.Priority(*req.Priority)
		ch.Priority = &prio
	}
	if req.ClientID != nil {
		if strings.TrimSpace(*req.ClientID) == "" {
			ch.ClearClient = true
		} else {
			id, err := uuid.Parse(*req.ClientID)
			if err != nil {
				return ch, shared.NewDomainError("INVALID_INPUT", "client_id must be a UUID")
			}
			ch.ClientID = &id
		}
	}
	var err error
	if req.StartDate != nil {
		if ch.StartDate, err = parseDate("start_date", *req.StartDate); err != nil {
			return ch, err
		}
	}
	if req.EndDate != nil {
		if ch.EndDate, err = parseDate("end_date", *req.EndDate); err != nil {
			return ch, err
		}
	}
	return ch, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", field+" must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

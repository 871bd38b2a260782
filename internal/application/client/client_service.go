// Package client implements the client use cases of a company.
package client

import (
	"context"
	"strings"

	"github.com/documentiulia/backend/internal/domain/client"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo     client.ClientRepository
	eventPublisher shared.EventPublisher
}

func NewClientService(clientRepo client.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

func (s *ClientService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ClientService) Create(ctx context.Context, tenantID, companyID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	c, err := client.NewClient(tenantID, companyID, req.Name, client.Type(req.Type), req.CUI)
	if err != nil {
		return nil, err
	}
	if c.CUI != "" {
		if err := s.ensureUniqueCUI(ctx, tenantID, companyID, c.CUI, uuid.Nil); err != nil {
			return nil, err
		}
	}
	if err := c.Update(req.Name, c.Type, c.CUI, client.Contact{
		RegCom:  req.RegCom,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		County:  req.County,
		Country: req.Country,
		Notes:   req.Notes,
	}); err != nil {
		return nil, err
	}
	c.CreatedBy = req.CreatedBy

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, c)

	response := ToClientResponse(c)
	return &response, nil
}

func (s *ClientService) GetByID(ctx context.Context, tenantID, companyID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, tenantID, companyID, clientID)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(c)
	return &response, nil
}

func (s *ClientService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter ClientListFilter) ([]ClientResponse, int64, error) {
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
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	clients, err := s.clientRepo.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.clientRepo.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return out, total, nil
}

func (s *ClientService) Update(ctx context.Context, tenantID, companyID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, tenantID, companyID, clientID)
	if err != nil {
		return nil, err
	}

	if err := c.Update(req.Name, client.Type(req.Type), req.CUI, client.Contact{
		RegCom:  req.RegCom,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		County:  req.County,
		Country: req.Country,
		Notes:   req.Notes,
	}); err != nil {
		return nil, err
	}
	if c.CUI != "" {
		if err := s.ensureUniqueCUI(ctx, tenantID, companyID, c.CUI, c.ID); err != nil {
			return nil, err
		}
	}
	if req.Status != nil && *req.Status != string(c.Status) {
		switch client.Status(*req.Status) {
		case client.StatusActive:
			err = c.Activate()
		case client.StatusInactive:
			err = c.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.clientRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, c)

	response := ToClientResponse(c)
	return &response, nil
}

func (s *ClientService) Delete(ctx context.Context, tenantID, companyID, clientID uuid.UUID) error {
	if _, err := s.clientRepo.FindByID(ctx, tenantID, companyID, clientID); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, tenantID, companyID, clientID)
}

// ensureUniqueCUI rejects a CUI already used by another client of the same company.
func (s *ClientService) ensureUniqueCUI(ctx context.Context, tenantID, companyID uuid.UUID, cui string, self uuid.UUID) error {
	existing, err := s.clientRepo.FindByCUI(ctx, tenantID, companyID, cui)
	if err != nil {
		if shared.ErrorCode(err) == shared.ErrNotFound.Code {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != self {
		return shared.NewDomainError("ALREADY_EXISTS", "A client with this CUI already exists")
	}
	return nil
}

func (s *ClientService) publishDomainEvents(ctx context.Context, c *client.Client) {
	if s.eventPublisher == nil {
		return
	}
	if events := c.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		c.ClearDomainEvents()
	}
}

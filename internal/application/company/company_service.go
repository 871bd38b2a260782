package company

import (
	"context"
	"strings"

	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceCounter tells whether a company still has invoices attached.
type InvoiceCounter interface {
	CountForCompany(ctx context.Context, tenantID, companyID uuid.UUID) (int64, error)
}

// CompanyService handles the legal entities a tenant keeps books for
type CompanyService struct {
	companyRepo    company.CompanyRepository
	invoices       InvoiceCounter
	eventPublisher shared.EventPublisher
}

func NewCompanyService(companyRepo company.CompanyRepository, invoices InvoiceCounter) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		invoices:    invoices,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CompanyService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CompanyService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	c, err := company.NewCompany(tenantID, req.Name, req.CUI)
	if err != nil {
		return nil, err
	}

	exists, err := s.companyRepo.ExistsByCUI(ctx, tenantID, c.CUI)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A company with this CUI already exists")
	}

	if err := c.Update(req.Name, detailsFromCreate(req)); err != nil {
		return nil, err
	}
	if req.DefaultCurrency != "" {
		if err := c.SetDefaultCurrency(req.DefaultCurrency); err != nil {
			return nil, err
		}
	}
	c.CreatedBy = req.CreatedBy

	if err := s.companyRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, c)

	response := ToCompanyResponse(c)
	return &response, nil
}

func (s *CompanyService) GetByID(ctx context.Context, tenantID, companyID uuid.UUID) (*CompanyResponse, error) {
	c, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(c)
	return &response, nil
}

// Exists resolves a company within the tenant; the company-scope middleware calls it on every request.
func (s *CompanyService) Exists(ctx context.Context, tenantID, companyID uuid.UUID) error {
	_, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	return err
}

func (s *CompanyService) List(ctx context.Context, tenantID uuid.UUID, filter CompanyListFilter) ([]CompanyResponse, int64, error) {
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
		domainFilter.Filters["status"] = filter.Status
	}

	companies, err := s.companyRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.companyRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCompanyResponses(companies), total, nil
}

func (s *CompanyService) Update(ctx context.Context, tenantID, companyID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	c, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}

	if err := c.Update(req.Name, company.Details{
		RegCom:   req.RegCom,
		Address:  req.Address,
		City:     req.City,
		County:   req.County,
		Country:  req.Country,
		VATPayer: req.VATPayer,
		IBAN:     req.IBAN,
		BankName: req.BankName,
		Email:    req.Email,
		Phone:    req.Phone,
	}); err != nil {
		return nil, err
	}
	if req.DefaultCurrency != "" && valueobject.Currency(strings.ToUpper(req.DefaultCurrency)) != c.DefaultCurrency {
		if err := c.SetDefaultCurrency(req.DefaultCurrency); err != nil {
			return nil, err
		}
	}

	if err := s.companyRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, c)

	response := ToCompanyResponse(c)
	return &response, nil
}

func (s *CompanyService) Activate(ctx context.Context, tenantID, companyID uuid.UUID) (*CompanyResponse, error) {
	return s.changeStatus(ctx, tenantID, companyID, (*company.Company).Activate)
}

func (s *CompanyService) Deactivate(ctx context.Context, tenantID, companyID uuid.UUID) (*CompanyResponse, error) {
	return s.changeStatus(ctx, tenantID, companyID, (*company.Company).Deactivate)
}

func (s *CompanyService) changeStatus(ctx context.Context, tenantID, companyID uuid.UUID, apply func(*company.Company) error) (*CompanyResponse, error) {
	c, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	if err := apply(c); err != nil {
		return nil, err
	}
	if err := s.companyRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, c)

	response := ToCompanyResponse(c)
	return &response, nil
}

// Delete removes a company that has no invoices.
func (s *CompanyService) Delete(ctx context.Context, tenantID, companyID uuid.UUID) error {
	if _, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID); err != nil {
		return err
	}
	count, err := s.invoices.CountForCompany(ctx, tenantID, companyID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("HAS_INVOICES", "Company has invoices and cannot be deleted; deactivate it instead")
	}
	return s.companyRepo.DeleteForTenant(ctx, tenantID, companyID)
}

func (s *CompanyService) publishDomainEvents(ctx context.Context, c *company.Company) {
	if s.eventPublisher == nil {
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	c.ClearDomainEvents()
}

func detailsFromCreate(req CreateCompanyRequest) company.Details {
	return company.Details{
		RegCom:   req.RegCom,
		Address:  req.Address,
		City:     req.City,
		County:   req.County,
		Country:  req.Country,
		VATPayer: req.VATPayer,
		IBAN:     req.IBAN,
		BankName: req.BankName,
		Email:    req.Email,
		Phone:    req.Phone,
	}
}

package models

import (
	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
)

type CompanyModel struct {
	TenantAggregateModel
	Name            string         `gorm:"type:varchar(200);not null"`
	CUI             string         `gorm:"column:cui;type:varchar(20);not null"`
	RegCom          string         `gorm:"type:varchar(50)"`
	Address         string         `gorm:"type:text"`
	City            string         `gorm:"type:varchar(100)"`
	County          string         `gorm:"type:varchar(100)"`
	Country         string         `gorm:"type:varchar(2);not null;default:'RO'"`
	VATPayer        bool           `gorm:"column:vat_payer;not null;default:false"`
	IBAN            string         `gorm:"column:iban;type:varchar(34)"`
	BankName        string         `gorm:"type:varchar(100)"`
	Email           string         `gorm:"type:varchar(200)"`
	Phone           string         `gorm:"type:varchar(50)"`
	DefaultCurrency string         `gorm:"type:varchar(3);not null;default:'RON'"`
	Status          company.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

func (CompanyModel) TableName() string {
	return "companies"
}

func (m *CompanyModel) ToDomain() *company.Company {
	return &company.Company{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		CUI:                 m.CUI,
		RegCom:              m.RegCom,
		Address:             m.Address,
		City:                m.City,
		County:              m.County,
		Country:             m.Country,
		VATPayer:            m.VATPayer,
		IBAN:                m.IBAN,
		BankName:            m.BankName,
		Email:               m.Email,
		Phone:               m.Phone,
		DefaultCurrency:     valueobject.Currency(m.DefaultCurrency),
		Status:              m.Status,
	}
}

func CompanyModelFromDomain(c *company.Company) *CompanyModel {
	m := &CompanyModel{
		Name:            c.Name,
		CUI:             c.CUI,
		RegCom:          c.RegCom,
		Address:         c.Address,
		City:            c.City,
		County:          c.County,
		Country:         c.Country,
		VATPayer:        c.VATPayer,
		IBAN:            c.IBAN,
		BankName:        c.BankName,
		Email:           c.Email,
		Phone:           c.Phone,
		DefaultCurrency: string(c.DefaultCurrency),
		Status:          c.Status,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

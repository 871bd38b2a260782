package models

import "github.com/documentiulia/backend/internal/domain/client"

type ClientModel struct {
	CompanyAggregateModel
	Name    string        `gorm:"type:varchar(200);not null"`
	Type    client.Type   `gorm:"type:varchar(20);not null;default:'company'"`
	CUI     string        `gorm:"column:cui;type:varchar(20);index"`
	RegCom  string        `gorm:"type:varchar(50)"`
	Email   string        `gorm:"type:varchar(200)"`
	Phone   string        `gorm:"type:varchar(50)"`
	Address string        `gorm:"type:text"`
	City    string        `gorm:"type:varchar(100)"`
	County  string        `gorm:"type:varchar(100)"`
	Country string        `gorm:"type:varchar(2);not null;default:'RO'"`
	Notes   string        `gorm:"type:text"`
	Status  client.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

func (ClientModel) TableName() string {
	return "clients"
}

func (m *ClientModel) ToDomain() *client.Client {
	return &client.Client{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Name:                 m.Name,
		Type:                 m.Type,
		CUI:                  m.CUI,
		RegCom:               m.RegCom,
		Email:                m.Email,
		Phone:                m.Phone,
		Address:              m.Address,
		City:                 m.City,
		County:               m.County,
		Country:              m.Country,
		Notes:                m.Notes,
		Status:               m.Status,
	}
}

func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{
		Name:    c.Name,
		Type:    c.Type,
		CUI:     c.CUI,
		RegCom:  c.RegCom,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		City:    c.City,
		County:  c.County,
		Country: c.Country,
		Notes:   c.Notes,
		Status:  c.Status,
	}
	m.FromDomainCompanyAggregateRoot(c.CompanyAggregateRoot)
	return m
}

package models

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/content"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ForumCategoryModel struct {
	TenantAggregateModel
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	Position    int    `gorm:"not null;default:0"`
}

func (ForumCategoryModel) TableName() string {
	return "forum_categories"
}

func (m *ForumCategoryModel) ToDomain() *content.ForumCategory {
	return &content.ForumCategory{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Slug:                m.Slug,
		Description:         m.Description,
		Position:            m.Position,
	}
}

func ForumCategoryModelFromDomain(c *content.ForumCategory) *ForumCategoryModel {
	m := &ForumCategoryModel{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Position:    c.Position,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

type ForumTopicModel struct {
	TenantAggregateModel
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Slug        string    `gorm:"type:varchar(100);not null"`
	Body        string    `gorm:"type:text;not null"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null"`
	Pinned      bool      `gorm:"not null;default:false"`
	Locked      bool      `gorm:"not null;default:false"`
	Views       int64     `gorm:"not null;default:0"`
	ReplyCount  int       `gorm:"not null;default:0"`
	LastReplyAt *time.Time
}

func (ForumTopicModel) TableName() string {
	return "forum_topics"
}

func (m *ForumTopicModel) ToDomain() *content.ForumTopic {
	return &content.ForumTopic{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		CategoryID:          m.CategoryID,
		Title:               m.Title,
		Slug:                m.Slug,
		Body:                m.Body,
		AuthorID:            m.AuthorID,
		Pinned:              m.Pinned,
		Locked:              m.Locked,
		Views:               m.Views,
		ReplyCount:          m.ReplyCount,
		LastReplyAt:         m.LastReplyAt,
	}
}

func ForumTopicModelFromDomain(t *content.ForumTopic) *ForumTopicModel {
	m := &ForumTopicModel{
		CategoryID:  t.CategoryID,
		Title:       t.Title,
		Slug:        t.Slug,
		Body:        t.Body,
		AuthorID:    t.AuthorID,
		Pinned:      t.Pinned,
		Locked:      t.Locked,
		Views:       t.Views,
		ReplyCount:  t.ReplyCount,
		LastReplyAt: t.LastReplyAt,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

type ForumPostModel struct {
	BaseModel
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index"`
	TopicID        uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID       uuid.UUID `gorm:"type:uuid;not null"`
	Body           string    `gorm:"type:text;not null"`
	AcceptedAnswer bool      `gorm:"not null;default:false"`
}

func (ForumPostModel) TableName() string {
	return "forum_posts"
}

func (m *ForumPostModel) ToDomain() *content.ForumPost {
	return &content.ForumPost{
		BaseEntity:     m.BaseModel.ToDomain(),
		TenantID:       m.TenantID,
		TopicID:        m.TopicID,
		AuthorID:       m.AuthorID,
		Body:           m.Body,
		AcceptedAnswer: m.AcceptedAnswer,
	}
}

func ForumPostModelFromDomain(p *content.ForumPost) *ForumPostModel {
	m := &ForumPostModel{
		TenantID:       p.TenantID,
		TopicID:        p.TopicID,
		AuthorID:       p.AuthorID,
		Body:           p.Body,
		AcceptedAnswer: p.AcceptedAnswer,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

type BlogPostModel struct {
	TenantAggregateModel
	Title       string             `gorm:"type:varchar(200);not null"`
	Slug        string             `gorm:"type:varchar(100);not null"`
	Excerpt     string             `gorm:"type:varchar(500)"`
	Content     string             `gorm:"type:text;not null"`
	AuthorID    uuid.UUID          `gorm:"type:uuid;not null"`
	Tags        datatypes.JSON     `gorm:"type:jsonb;not null"`
	Status      content.BlogStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	PublishedAt *time.Time         `gorm:"index"`
	Views       int64              `gorm:"not null;default:0"`
}

func (BlogPostModel) TableName() string {
	return "blog_posts"
}

func (m *BlogPostModel) ToDomain() *content.BlogPost {
	p := &content.BlogPost{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Title:               m.Title,
		Slug:                m.Slug,
		Excerpt:             m.Excerpt,
		Content:             m.Content,
		AuthorID:            m.AuthorID,
		Tags:                []string{},
		Status:              m.Status,
		PublishedAt:         m.PublishedAt,
		Views:               m.Views,
	}
	fromJSON(m.Tags, &p.Tags)
	return p
}

func BlogPostModelFromDomain(p *content.BlogPost) *BlogPostModel {
	m := &BlogPostModel{
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		AuthorID:    p.AuthorID,
		Tags:        toJSON(p.Tags, "[]"),
		Status:      p.Status,
		PublishedAt: p.PublishedAt,
		Views:       p.Views,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

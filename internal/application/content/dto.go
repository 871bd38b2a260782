package content

import (
	"time"

	"github.com/documentiulia/backend/internal/domain/content"
	"github.com/google/uuid"
)

// Actor is the authenticated user acting on community content. Moderators
// (tenant owners) may pin, lock and remove anybody's topics.
type Actor struct {
	UserID    uuid.UUID
	Moderator bool
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	Position    int    `json:"position" binding:"min=0"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateTopicRequest struct {
	CategoryID uuid.UUID `json:"category_id" binding:"required"`
	Title      string    `json:"title" binding:"required,min=5,max=200"`
	Body       string    `json:"body" binding:"required"`
}

type UpdateTopicRequest struct {
	Title string `json:"title" binding:"required,min=5,max=200"`
	Body  string `json:"body" binding:"required"`
}

type TopicListFilter struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	AuthorID   string `form:"author_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type TopicResponse struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Pinned      bool       `json:"pinned"`
	Locked      bool       `json:"locked"`
	Views       int64      `json:"views"`
	ReplyCount  int        `json:"reply_count"`
	LastReplyAt *time.Time `json:"last_reply_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ReplyRequest struct {
	Body string `json:"body" binding:"required,min=1,max=10000"`
}

type PostListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type PostResponse struct {
	ID             uuid.UUID `json:"id"`
	TopicID        uuid.UUID `json:"topic_id"`
	AuthorID       uuid.UUID `json:"author_id"`
	Body           string    `json:"body"`
	AcceptedAnswer bool      `json:"accepted_answer"`
	CreatedAt      time.Time `json:"created_at"`
}

// BlogPostRequest is used for both create and update.
type BlogPostRequest struct {
	Title   string   `json:"title" binding:"required,min=3,max=200"`
	Excerpt string   `json:"excerpt" binding:"max=500"`
	Content string   `json:"content"`
	Tags    []string `json:"tags" binding:"max=20"`
}

type BlogListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=draft published archived"`
	Tag      string `form:"tag"`
	AuthorID string `form:"author_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

type BlogPostResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content,omitempty"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

func ToCategoryResponse(c *content.ForumCategory) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Position:    c.Position,
		CreatedAt:   c.CreatedAt,
	}
}

func ToTopicResponse(t *content.ForumTopic) TopicResponse {
	return TopicResponse{
		ID:          t.ID,
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
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToPostResponse(p *content.ForumPost) PostResponse {
	return PostResponse{
		ID:             p.ID,
		TopicID:        p.TopicID,
		AuthorID:       p.AuthorID,
		Body:           p.Body,
		AcceptedAnswer: p.AcceptedAnswer,
		CreatedAt:      p.CreatedAt,
	}
}

func ToBlogPostResponse(p *content.BlogPost) BlogPostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return BlogPostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		AuthorID:    p.AuthorID,
		Tags:        tags,
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
		Views:       p.Views,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

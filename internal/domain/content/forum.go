// Package content holds the community forum and the blog of a tenant.
package content

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type ForumCategory struct {
	shared.TenantAggregateRoot
	Name        string
	Slug        string
	Description string
	Position    int
}

func NewForumCategory(tenantID uuid.UUID, name, description string, position int) (*ForumCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name is required and cannot exceed 100 characters")
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name must contain letters or digits")
	}
	if position < 0 {
		position = 0
	}
	return &ForumCategory{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Slug:                slug,
		Description:         strings.TrimSpace(description),
		Position:            position,
	}, nil
}

type ForumTopic struct {
	shared.TenantAggregateRoot
	CategoryID  uuid.UUID
	Title       string
	Slug        string
	Body        string
	AuthorID    uuid.UUID
	Pinned      bool
	Locked      bool
	Views       int64
	ReplyCount  int
	LastReplyAt *time.Time
}

func NewForumTopic(tenantID, categoryID, authorID uuid.UUID, title, body string) (*ForumTopic, error) {
	t := &ForumTopic{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CategoryID:          categoryID,
		AuthorID:            authorID,
	}
	if err := t.setText(title, body); err != nil {
		return nil, err
	}
	t.Slug = Slugify(t.Title)
	t.AddDomainEvent(NewContentEvent(EventTypeTopicCreated, AggregateTypeForumTopic, t.ID, tenantID))
	return t, nil
}

// Edit changes title and body. The slug is kept so links stay stable.
func (t *ForumTopic) Edit(title, body string) error {
	if t.Locked {
		return shared.NewDomainError("TOPIC_LOCKED", "Topic is locked")
	}
	if err := t.setText(title, body); err != nil {
		return err
	}
	t.touch()
	return nil
}

func (t *ForumTopic) SetPinned(pinned bool) {
	t.Pinned = pinned
	t.touch()
}

func (t *ForumTopic) SetLocked(locked bool) {
	t.Locked = locked
	t.touch()
}

func (t *ForumTopic) RecordView() {
	t.Views++
}

// Reply creates a post in the topic and bumps the reply counters.
func (t *ForumTopic) Reply(authorID uuid.UUID, body string) (*ForumPost, error) {
	if t.Locked {
		return nil, shared.NewDomainError("TOPIC_LOCKED", "Cannot reply to a locked topic")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Reply body is required")
	}
	post := &ForumPost{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   t.TenantID,
		TopicID:    t.ID,
		AuthorID:   authorID,
		Body:       body,
	}
	now := post.CreatedAt
	t.ReplyCount++
	t.LastReplyAt = &now
	t.touch()
	return post, nil
}

// AcceptAnswer marks post as the accepted answer. Only the topic author may do this.
func (t *ForumTopic) AcceptAnswer(userID uuid.UUID, post *ForumPost) error {
	if userID != t.AuthorID {
		return shared.NewDomainError("FORBIDDEN", "Only the topic author can accept an answer")
	}
	if post.TopicID != t.ID {
		return shared.NewDomainError("POST_MISMATCH", "Post does not belong to this topic")
	}
	post.AcceptedAnswer = true
	post.Touch()
	return nil
}

func (t *ForumTopic) setText(title, body string) error {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n < 5 || n > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Topic title must be between 5 and 200 characters")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return shared.NewDomainError("INVALID_BODY", "Topic body is required")
	}
	t.Title = title
	t.Body = body
	return nil
}

func (t *ForumTopic) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// ForumPost is a reply. It is owned by its topic.
type ForumPost struct {
	shared.BaseEntity
	TenantID       uuid.UUID
	TopicID        uuid.UUID
	AuthorID       uuid.UUID
	Body           string
	AcceptedAnswer bool
}

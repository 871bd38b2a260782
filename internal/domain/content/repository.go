package content

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type ForumRepository interface {
	ListCategories(ctx context.Context, tenantID uuid.UUID) ([]ForumCategory, error)
	FindCategory(ctx context.Context, tenantID, id uuid.UUID) (*ForumCategory, error)
	CategorySlugExists(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error)
	SaveCategory(ctx context.Context, category *ForumCategory) error

	FindTopic(ctx context.Context, tenantID, id uuid.UUID) (*ForumTopic, error)
	// FindTopics supports Search (title) and the "category_id" and "author_id" filters.
	// Pinned topics sort first.
	FindTopics(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ForumTopic, error)
	CountTopics(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	SaveTopic(ctx context.Context, topic *ForumTopic) error
	IncrementTopicViews(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteTopic(ctx context.Context, tenantID, id uuid.UUID) error

	FindPost(ctx context.Context, tenantID, id uuid.UUID) (*ForumPost, error)
	FindPosts(ctx context.Context, tenantID, topicID uuid.UUID, filter shared.Filter) ([]ForumPost, error)
	CountPosts(ctx context.Context, tenantID, topicID uuid.UUID) (int64, error)
	// SaveReply stores the post and the updated topic counters together.
	SaveReply(ctx context.Context, topic *ForumTopic, post *ForumPost) error
	SavePost(ctx context.Context, post *ForumPost) error
}

type BlogRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*BlogPost, error)
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*BlogPost, error)
	// FindAll supports Search (title, excerpt) and the "status", "tag" and "author_id" filters.
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]BlogPost, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	SlugExists(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error)
	IncrementViews(ctx context.Context, tenantID, id uuid.UUID) error
	Save(ctx context.Context, post *BlogPost) error
	SaveWithLock(ctx context.Context, post *BlogPost) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

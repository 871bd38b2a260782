// Package content serves the tenant community forum and blog.
package content

import (
	"context"
	"errors"
	"strings"

	"github.com/documentiulia/backend/internal/domain/content"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ForumService struct {
	forum          content.ForumRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewForumService(forum content.ForumRepository, logger *zap.Logger) *ForumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForumService{forum: forum, logger: logger.Named("forum")}
}

func (s *ForumService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ForumService) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.forum.ListCategories(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

func (s *ForumService) CreateCategory(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := content.NewForumCategory(tenantID, req.Name, req.Description, req.Position)
	if err != nil {
		return nil, err
	}
	exists, err := s.forum.CategorySlugExists(ctx, tenantID, category.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "A category with this name already exists")
	}
	if err := s.forum.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

func (s *ForumService) ListTopics(ctx context.Context, tenantID uuid.UUID, filter TopicListFilter) ([]TopicResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = strings.TrimSpace(filter.Search)
	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "category_id must be a UUID")
		}
		domainFilter.Filters["category_id"] = id
	}
	if filter.AuthorID != "" {
		id, err := uuid.Parse(filter.AuthorID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "author_id must be a UUID")
		}
		domainFilter.Filters["author_id"] = id
	}

	topics, err := s.forum.FindTopics(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.forum.CountTopics(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]TopicResponse, len(topics))
	for i := range topics {
		out[i] = ToTopicResponse(&topics[i])
	}
	return out, total, nil
}

// GetTopic returns the topic and counts the view. A failed view increment
// does not fail the read.
func (s *ForumService) GetTopic(ctx context.Context, tenantID, id uuid.UUID) (*TopicResponse, error) {
	topic, err := s.forum.FindTopic(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.forum.IncrementTopicViews(ctx, tenantID, id); err != nil {
		s.logger.Warn("increment topic views failed", zap.String("topic_id", id.String()), zap.Error(err))
	} else {
		topic.RecordView()
	}
	response := ToTopicResponse(topic)
	return &response, nil
}

func (s *ForumService) CreateTopic(ctx context.Context, tenantID uuid.UUID, actor Actor, req CreateTopicRequest) (*TopicResponse, error) {
	if _, err := s.forum.FindCategory(ctx, tenantID, req.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Forum category not found")
		}
		return nil, err
	}
	topic, err := content.NewForumTopic(tenantID, req.CategoryID, actor.UserID, req.Title, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.forum.SaveTopic(ctx, topic); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, topic)

	response := ToTopicResponse(topic)
	return &response, nil
}

func (s *ForumService) UpdateTopic(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req UpdateTopicRequest) (*TopicResponse, error) {
	topic, err := s.ownTopic(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	if err := topic.Edit(req.Title, req.Body); err != nil {
		return nil, err
	}
	return s.saveTopic(ctx, topic)
}

// DeleteTopic removes the topic together with its replies.
func (s *ForumService) DeleteTopic(ctx context.Context, tenantID, id uuid.UUID, actor Actor) error {
	if _, err := s.ownTopic(ctx, tenantID, id, actor); err != nil {
		return err
	}
	return s.forum.DeleteTopic(ctx, tenantID, id)
}

func (s *ForumService) PinTopic(ctx context.Context, tenantID, id uuid.UUID, actor Actor, pinned bool) (*TopicResponse, error) {
	topic, err := s.moderatedTopic(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	topic.SetPinned(pinned)
	return s.saveTopic(ctx, topic)
}

func (s *ForumService) LockTopic(ctx context.Context, tenantID, id uuid.UUID, actor Actor, locked bool) (*TopicResponse, error) {
	topic, err := s.moderatedTopic(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	topic.SetLocked(locked)
	return s.saveTopic(ctx, topic)
}

func (s *ForumService) ListPosts(ctx context.Context, tenantID, topicID uuid.UUID, filter PostListFilter) ([]PostResponse, int64, error) {
	if _, err := s.forum.FindTopic(ctx, tenantID, topicID); err != nil {
		return nil, 0, err
	}
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "created_at"
	domainFilter.OrderDir = "asc"

	posts, err := s.forum.FindPosts(ctx, tenantID, topicID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.forum.CountPosts(ctx, tenantID, topicID)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PostResponse, len(posts))
	for i := range posts {
		out[i] = ToPostResponse(&posts[i])
	}
	return out, total, nil
}

func (s *ForumService) Reply(ctx context.Context, tenantID, topicID uuid.UUID, actor Actor, req ReplyRequest) (*PostResponse, error) {
	topic, err := s.forum.FindTopic(ctx, tenantID, topicID)
	if err != nil {
		return nil, err
	}
	post, err := topic.Reply(actor.UserID, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.forum.SaveReply(ctx, topic, post); err != nil {
		return nil, err
	}
	s.logger.Debug("forum reply", zap.String("topic_id", topicID.String()), zap.Int("replies", topic.ReplyCount))

	response := ToPostResponse(post)
	return &response, nil
}

// AcceptAnswer marks a reply as the accepted answer of its topic.
func (s *ForumService) AcceptAnswer(ctx context.Context, tenantID, postID uuid.UUID, actor Actor) (*PostResponse, error) {
	post, err := s.forum.FindPost(ctx, tenantID, postID)
	if err != nil {
		return nil, err
	}
	topic, err := s.forum.FindTopic(ctx, tenantID, post.TopicID)
	if err != nil {
		return nil, err
	}
	if err := topic.AcceptAnswer(actor.UserID, post); err != nil {
		return nil, err
	}
	if err := s.forum.SavePost(ctx, post); err != nil {
		return nil, err
	}
	response := ToPostResponse(post)
	return &response, nil
}

func (s *ForumService) ownTopic(ctx context.Context, tenantID, id uuid.UUID, actor Actor) (*content.ForumTopic, error) {
	topic, err := s.forum.FindTopic(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if topic.AuthorID != actor.UserID && !actor.Moderator {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the author or a moderator can change this topic")
	}
	return topic, nil
}

func (s *ForumService) moderatedTopic(ctx context.Context, tenantID, id uuid.UUID, actor Actor) (*content.ForumTopic, error) {
	if !actor.Moderator {
		return nil, shared.NewDomainError("FORBIDDEN", "Only moderators can pin or lock topics")
	}
	return s.forum.FindTopic(ctx, tenantID, id)
}

func (s *ForumService) saveTopic(ctx context.Context, topic *content.ForumTopic) (*TopicResponse, error) {
	if err := s.forum.SaveTopic(ctx, topic); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, topic)
	response := ToTopicResponse(topic)
	return &response, nil
}

func (s *ForumService) publishDomainEvents(ctx context.Context, agg shared.AggregateRoot) {
	if s.eventPublisher == nil {
		agg.ClearDomainEvents()
		return
	}
	if events := agg.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		agg.ClearDomainEvents()
	}
}

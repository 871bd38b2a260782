package content

import (
	"context"
	"strings"

	"github.com/documentiulia/backend/internal/domain/content"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxSlugAttempts bounds the "-2", "-3"... suffix search for a free slug.
const maxSlugAttempts = 50

type BlogService struct {
	posts          content.BlogRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewBlogService(posts content.BlogRepository, logger *zap.Logger) *BlogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogService{posts: posts, logger: logger.Named("blog")}
}

func (s *BlogService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns blog posts. When public is set only published posts are visible,
// whatever status the caller asked for.
func (s *BlogService) List(ctx context.Context, tenantID uuid.UUID, filter BlogListFilter, public bool) ([]BlogPostResponse, int64, error) {
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

	switch {
	case public:
		domainFilter.Filters["status"] = string(content.BlogStatusPublished)
		domainFilter.OrderBy = "published_at"
		domainFilter.OrderDir = "desc"
	case filter.Status != "":
		domainFilter.Filters["status"] = filter.Status
	}
	if tag := content.Slugify(filter.Tag); tag != "" {
		domainFilter.Filters["tag"] = tag
	}
	if filter.AuthorID != "" {
		id, err := uuid.Parse(filter.AuthorID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "author_id must be a UUID")
		}
		domainFilter.Filters["author_id"] = id
	}

	posts, err := s.posts.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.posts.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]BlogPostResponse, len(posts))
	for i := range posts {
		out[i] = ToBlogPostResponse(&posts[i])
		if public {
			out[i].Content = ""
		}
	}
	return out, total, nil
}

// GetBySlug resolves a post for reading. Public readers only see published
// posts and each public read counts as a view.
func (s *BlogService) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string, public bool) (*BlogPostResponse, error) {
	post, err := s.posts.FindBySlug(ctx, tenantID, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if public {
		if !post.IsPublic() {
			return nil, shared.ErrNotFound
		}
		if err := s.posts.IncrementViews(ctx, tenantID, post.ID); err != nil {
			s.logger.Warn("increment blog views failed", zap.String("slug", post.Slug), zap.Error(err))
		} else {
			post.RecordView()
		}
	}
	response := ToBlogPostResponse(post)
	return &response, nil
}

func (s *BlogService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BlogPostResponse, error) {
	post, err := s.posts.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToBlogPostResponse(post)
	return &response, nil
}

func (s *BlogService) Create(ctx context.Context, tenantID, authorID uuid.UUID, req BlogPostRequest) (*BlogPostResponse, error) {
	base := content.Slugify(req.Title)
	if base == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title must contain letters or digits")
	}
	slug, err := s.uniqueSlug(ctx, tenantID, base)
	if err != nil {
		return nil, err
	}
	post, err := content.NewBlogPost(tenantID, authorID, slug, toDraft(req))
	if err != nil {
		return nil, err
	}
	post.SetCreatedBy(authorID)
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("blog post created", zap.String("slug", post.Slug))

	response := ToBlogPostResponse(post)
	return &response, nil
}

// Update edits a post. The slug never changes so published links keep working.
func (s *BlogService) Update(ctx context.Context, tenantID, id uuid.UUID, req BlogPostRequest) (*BlogPostResponse, error) {
	return s.apply(ctx, tenantID, id, func(p *content.BlogPost) error { return p.Update(toDraft(req)) })
}

func (s *BlogService) Publish(ctx context.Context, tenantID, id uuid.UUID) (*BlogPostResponse, error) {
	return s.apply(ctx, tenantID, id, (*content.BlogPost).Publish)
}

func (s *BlogService) Archive(ctx context.Context, tenantID, id uuid.UUID) (*BlogPostResponse, error) {
	return s.apply(ctx, tenantID, id, (*content.BlogPost).Archive)
}

func (s *BlogService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.posts.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.posts.Delete(ctx, tenantID, id)
}

func (s *BlogService) uniqueSlug(ctx context.Context, tenantID uuid.UUID, base string) (string, error) {
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := content.WithSuffix(base, n)
		exists, err := s.posts.SlugExists(ctx, tenantID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", shared.NewDomainError(shared.ErrAlreadyExists.Code, "Too many posts share this title")
}

func (s *BlogService) apply(ctx context.Context, tenantID, id uuid.UUID, step func(*content.BlogPost) error) (*BlogPostResponse, error) {
	post, err := s.posts.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := step(post); err != nil {
		return nil, err
	}
	if err := s.posts.SaveWithLock(ctx, post); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, post)
	response := ToBlogPostResponse(post)
	return &response, nil
}

func (s *BlogService) publishDomainEvents(ctx context.Context, post *content.BlogPost) {
	if s.eventPublisher == nil {
		post.ClearDomainEvents()
		return
	}
	if events := post.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		post.ClearDomainEvents()
	}
}

func toDraft(req BlogPostRequest) content.BlogDraft {
	return content.BlogDraft{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Content: req.Content,
		Tags:    req.Tags,
	}
}

package content

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
	BlogStatusArchived  BlogStatus = "archived"
)

type BlogPost struct {
	shared.TenantAggregateRoot
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	AuthorID    uuid.UUID
	Tags        []string
	Status      BlogStatus
	PublishedAt *time.Time
	Views       int64
}

// BlogDraft is the editable part of a blog post.
type BlogDraft struct {
	Title   string
	Excerpt string
	Content string
	Tags    []string
}

// NewBlogPost starts a draft. slug must already be unique for the tenant.
func NewBlogPost(tenantID, authorID uuid.UUID, slug string, draft BlogDraft) (*BlogPost, error) {
	p := &BlogPost{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AuthorID:            authorID,
		Status:              BlogStatusDraft,
	}
	if err := p.apply(draft); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = Slugify(p.Title)
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title must contain letters or digits")
	}
	p.Slug = slug
	return p, nil
}

func (p *BlogPost) Update(draft BlogDraft) error {
	if p.Status == BlogStatusArchived {
		return shared.NewDomainError("POST_ARCHIVED", "Archived posts cannot be edited")
	}
	if err := p.apply(draft); err != nil {
		return err
	}
	p.touch()
	return nil
}

func (p *BlogPost) Publish() error {
	if p.Status == BlogStatusPublished {
		return shared.NewDomainError("ALREADY_PUBLISHED", "Post is already published")
	}
	if strings.TrimSpace(p.Content) == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Cannot publish a post without content")
	}
	now := time.Now()
	p.Status = BlogStatusPublished
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	p.touch()
	p.AddDomainEvent(NewContentEvent(EventTypeBlogPublished, AggregateTypeBlogPost, p.ID, p.TenantID))
	return nil
}

func (p *BlogPost) Archive() error {
	if p.Status == BlogStatusArchived {
		return shared.NewDomainError("POST_ARCHIVED", "Post is already archived")
	}
	p.Status = BlogStatusArchived
	p.touch()
	return nil
}

func (p *BlogPost) IsPublic() bool {
	return p.Status == BlogStatusPublished
}

func (p *BlogPost) RecordView() {
	p.Views++
}

func (p *BlogPost) apply(d BlogDraft) error {
	title := strings.TrimSpace(d.Title)
	if n := utf8.RuneCountInString(title); n < 3 || n > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title must be between 3 and 200 characters")
	}
	excerpt := strings.TrimSpace(d.Excerpt)
	if utf8.RuneCountInString(excerpt) > 500 {
		return shared.NewDomainError("INVALID_EXCERPT", "Excerpt cannot exceed 500 characters")
	}
	p.Title = title
	p.Excerpt = excerpt
	p.Content = d.Content
	p.Tags = normalizeTags(d.Tags)
	return nil
}

func (p *BlogPost) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = Slugify(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

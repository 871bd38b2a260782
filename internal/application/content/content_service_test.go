package content

import (
	"context"
	"testing"

	"github.com/documentiulia/backend/internal/domain/content"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockForumRepository struct {
	mock.Mock
}

func (m *MockForumRepository) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]content.ForumCategory, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]content.ForumCategory), args.Error(1)
}

func (m *MockForumRepository) FindCategory(ctx context.Context, tenantID, id uuid.UUID) (*content.ForumCategory, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.ForumCategory), args.Error(1)
}

func (m *MockForumRepository) CategorySlugExists(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	args := m.Called(ctx, tenantID, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockForumRepository) SaveCategory(ctx context.Context, category *content.ForumCategory) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockForumRepository) FindTopic(ctx context.Context, tenantID, id uuid.UUID) (*content.ForumTopic, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.ForumTopic), args.Error(1)
}

func (m *MockForumRepository) FindTopics(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]content.ForumTopic, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]content.ForumTopic), args.Error(1)
}

func (m *MockForumRepository) CountTopics(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockForumRepository) SaveTopic(ctx context.Context, topic *content.ForumTopic) error {
	return m.Called(ctx, topic).Error(0)
}

func (m *MockForumRepository) IncrementTopicViews(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockForumRepository) DeleteTopic(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockForumRepository) FindPost(ctx context.Context, tenantID, id uuid.UUID) (*content.ForumPost, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.ForumPost), args.Error(1)
}

func (m *MockForumRepository) FindPosts(ctx context.Context, tenantID, topicID uuid.UUID, filter shared.Filter) ([]content.ForumPost, error) {
	args := m.Called(ctx, tenantID, topicID, filter)
	return args.Get(0).([]content.ForumPost), args.Error(1)
}

func (m *MockForumRepository) CountPosts(ctx context.Context, tenantID, topicID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, topicID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockForumRepository) SaveReply(ctx context.Context, topic *content.ForumTopic, post *content.ForumPost) error {
	return m.Called(ctx, topic, post).Error(0)
}

func (m *MockForumRepository) SavePost(ctx context.Context, post *content.ForumPost) error {
	return m.Called(ctx, post).Error(0)
}

type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*content.BlogPost, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*content.BlogPost, error) {
	args := m.Called(ctx, tenantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]content.BlogPost, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]content.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogRepository) SlugExists(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	args := m.Called(ctx, tenantID, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlogRepository) IncrementViews(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockBlogRepository) Save(ctx context.Context, post *content.BlogPost) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockBlogRepository) SaveWithLock(ctx context.Context, post *content.BlogPost) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockBlogRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func newTopic(t *testing.T, tenantID, authorID uuid.UUID) *content.ForumTopic {
	t.Helper()
	topic, err := content.NewForumTopic(tenantID, uuid.New(), authorID, "Cum declar TVA la încasare?", "Am o firmă nouă și nu știu cum să procedez.")
	require.NoError(t, err)
	topic.ClearDomainEvents()
	return topic
}

func TestForumService_CreateCategory(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockForumRepository)
	svc := NewForumService(repo, zaptest.NewLogger(t))

	repo.On("CategorySlugExists", ctx, tenantID, "fiscalitate-si-taxe").Return(false, nil).Once()
	repo.On("SaveCategory", ctx, mock.AnythingOfType("*content.ForumCategory")).Return(nil)

	resp, err := svc.CreateCategory(ctx, tenantID, CreateCategoryRequest{Name: "Fiscalitate și taxe", Position: 2})
	require.NoError(t, err)
	assert.Equal(t, "fiscalitate-si-taxe", resp.Slug)
	assert.Equal(t, 2, resp.Position)

	repo.On("CategorySlugExists", ctx, tenantID, "fiscalitate-si-taxe").Return(true, nil)
	_, err = svc.CreateCategory(ctx, tenantID, CreateCategoryRequest{Name: "Fiscalitate si Taxe"})
	assert.Equal(t, "ALREADY_EXISTS", shared.ErrorCode(err))
}

func TestForumService_CreateTopic(t *testing.T) {
	ctx := context.Background()
	tenantID, categoryID := uuid.New(), uuid.New()
	actor := Actor{UserID: uuid.New()}
	repo := new(MockForumRepository)
	publisher := &capturePublisher{}
	svc := NewForumService(repo, nil)
	svc.SetEventPublisher(publisher)

	category, err := content.NewForumCategory(tenantID, "Contabilitate", "", 0)
	require.NoError(t, err)
	repo.On("FindCategory", ctx, tenantID, categoryID).Return(category, nil)
	repo.On("SaveTopic", ctx, mock.AnythingOfType("*content.ForumTopic")).Return(nil)

	resp, err := svc.CreateTopic(ctx, tenantID, actor, CreateTopicRequest{
		CategoryID: categoryID,
		Title:      "Închidere de an fiscal",
		Body:       "Ce documente trebuie pregătite?",
	})
	require.NoError(t, err)
	assert.Equal(t, "inchidere-de-an-fiscal", resp.Slug)
	assert.Equal(t, actor.UserID, resp.AuthorID)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, content.EventTypeTopicCreated, publisher.events[0].EventType())
}

func TestForumService_CreateTopicUnknownCategory(t *testing.T) {
	ctx := context.Background()
	tenantID, categoryID := uuid.New(), uuid.New()
	repo := new(MockForumRepository)
	svc := NewForumService(repo, nil)

	repo.On("FindCategory", ctx, tenantID, categoryID).Return(nil, shared.ErrNotFound)

	_, err := svc.CreateTopic(ctx, tenantID, Actor{UserID: uuid.New()}, CreateTopicRequest{CategoryID: categoryID, Title: "Titlu valid", Body: "x"})
	assert.Equal(t, "INVALID_CATEGORY", shared.ErrorCode(err))
	repo.AssertNotCalled(t, "SaveTopic", mock.Anything, mock.Anything)
}

func TestForumService_GetTopicCountsView(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockForumRepository)
	svc := NewForumService(repo, nil)
	topic := newTopic(t, tenantID, uuid.New())

	repo.On("FindTopic", ctx, tenantID, topic.ID).Return(topic, nil)
	repo.On("IncrementTopicViews", ctx, tenantID, topic.ID).Return(nil)

	resp, err := svc.GetTopic(ctx, tenantID, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Views)
	repo.AssertExpectations(t)
}

func TestForumService_EditRequiresAuthorOrModerator(t *testing.T) {
	ctx := context.Background()
	tenantID, authorID := uuid.New(), uuid.New()
	repo := new(MockForumRepository)
	svc := NewForumService(repo, nil)
	topic := newTopic(t, tenantID, authorID)

	repo.On("FindTopic", ctx, tenantID, topic.ID).Return(topic, nil)
	repo.On("SaveTopic", ctx, topic).Return(nil)
	repo.On("DeleteTopic", ctx, tenantID, topic.ID).Return(nil)

	req := UpdateTopicRequest{Title: "Titlu actualizat", Body: "Corp nou"}
	_, err := svc.UpdateTopic(ctx, tenantID, topic.ID, Actor{UserID: uuid.New()}, req)
	assert.Equal(t, "FORBIDDEN", shared.ErrorCode(err))

	resp, err := svc.UpdateTopic(ctx, tenantID, topic.ID, Actor{UserID: authorID}, req)
	require.NoError(t, err)
	assert.Equal(t, "Titlu actualizat", resp.Title)
	assert.Equal(t, topic.Slug, resp.Slug)

	require.NoError(t, svc.DeleteTopic(ctx, tenantID, topic.ID, Actor{UserID: uuid.New(), Moderator: true}))
}

func TestForumService_LockBlocksReplies(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockForumRepository)
	svc := NewForumService(repo, nil)
	topic := newTopic(t, tenantID, uuid.New())
	moderator := Actor{UserID: uuid.New(), Moderator: true}

	repo.On("FindTopic", ctx, tenantID, topic.ID).Return(topic, nil)
	repo.On("SaveTopic", ctx, topic).Return(nil)
	repo.On("SaveReply", ctx, topic, mock.AnythingOfType("*content.ForumPost")).Return(nil)

	_, err := svc.LockTopic(ctx, tenantID, topic.ID, Actor{UserID: topic.AuthorID}, true)
	assert.Equal(t, "FORBIDDEN", shared.ErrorCode(err))

	post, err := svc.Reply(ctx, tenantID, topic.ID, Actor{UserID: uuid.New()}, ReplyRequest{Body: "Se aplică de la data încasării."})
	require.NoError(t, err)
	assert.Equal(t, topic.ID, post.TopicID)
	assert.Equal(t, 1, topic.ReplyCount)
	assert.NotNil(t, topic.LastReplyAt)

	resp, err := svc.LockTopic(ctx, tenantID, topic.ID, moderator, true)
	require.NoError(t, err)
	assert.True(t, resp.Locked)

	_, err = svc.Reply(ctx, tenantID, topic.ID, Actor{UserID: uuid.New()}, ReplyRequest{Body: "Încă o întrebare"})
	assert.Equal(t, "TOPIC_LOCKED", shared.ErrorCode(err))

	pinned, err := svc.PinTopic(ctx, tenantID, topic.ID, moderator, true)
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)
}

func TestForumService_AcceptAnswer(t *testing.T) {
	ctx := context.Background()
	tenantID, authorID := uuid.New(), uuid.New()
	repo := new(MockForumRepository)
	svc := NewForumService(repo, nil)
	topic := newTopic(t, tenantID, authorID)
	post, err := topic.Reply(uuid.New(), "Răspuns")
	require.NoError(t, err)

	repo.On("FindPost", ctx, tenantID, post.ID).Return(post, nil)
	repo.On("FindTopic", ctx, tenantID, topic.ID).Return(topic, nil)
	repo.On("SavePost", ctx, post).Return(nil)

	_, err = svc.AcceptAnswer(ctx, tenantID, post.ID, Actor{UserID: uuid.New(), Moderator: true})
	assert.Equal(t, "FORBIDDEN", shared.ErrorCode(err))

	resp, err := svc.AcceptAnswer(ctx, tenantID, post.ID, Actor{UserID: authorID})
	require.NoError(t, err)
	assert.True(t, resp.AcceptedAnswer)
}

func TestForumService_ListTopicsAndPosts(t *testing.T) {
	ctx := context.Background()
	tenantID, categoryID := uuid.New(), uuid.New()
	repo := new(MockForumRepository)
	svc := NewForumService(repo, nil)
	topic := newTopic(t, tenantID, uuid.New())

	byCategory := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["category_id"] == categoryID && f.Search == "tva"
	})
	repo.On("FindTopics", ctx, tenantID, byCategory).Return([]content.ForumTopic{*topic}, nil)
	repo.On("CountTopics", ctx, tenantID, byCategory).Return(int64(1), nil)

	topics, total, err := svc.ListTopics(ctx, tenantID, TopicListFilter{CategoryID: categoryID.String(), Search: " tva "})
	require.NoError(t, err)
	assert.Len(t, topics, 1)
	assert.Equal(t, int64(1), total)

	_, _, err = svc.ListTopics(ctx, tenantID, TopicListFilter{AuthorID: "nope"})
	assert.Equal(t, "INVALID_INPUT", shared.ErrorCode(err))

	oldestFirst := mock.MatchedBy(func(f shared.Filter) bool { return f.OrderBy == "created_at" && f.OrderDir == "asc" })
	repo.On("FindTopic", ctx, tenantID, topic.ID).Return(topic, nil)
	repo.On("FindPosts", ctx, tenantID, topic.ID, oldestFirst).Return([]content.ForumPost{}, nil)
	repo.On("CountPosts", ctx, tenantID, topic.ID).Return(int64(0), nil)

	posts, _, err := svc.ListPosts(ctx, tenantID, topic.ID, PostListFilter{})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestBlogService_CreateFindsFreeSlug(t *testing.T) {
	ctx := context.Background()
	tenantID, authorID := uuid.New(), uuid.New()
	repo := new(MockBlogRepository)
	svc := NewBlogService(repo, zaptest.NewLogger(t))

	repo.On("SlugExists", ctx, tenantID, "noutati-fiscale-2026").Return(true, nil)
	repo.On("SlugExists", ctx, tenantID, "noutati-fiscale-2026-2").Return(true, nil)
	repo.On("SlugExists", ctx, tenantID, "noutati-fiscale-2026-3").Return(false, nil)
	repo.On("Save", ctx, mock.AnythingOfType("*content.BlogPost")).Return(nil)

	resp, err := svc.Create(ctx, tenantID, authorID, BlogPostRequest{
		Title:   "Noutăți fiscale 2026",
		Content: "Cota standard de TVA devine 21%.",
		Tags:    []string{"TVA", "Legislație", "tva"},
	})
	require.NoError(t, err)
	assert.Equal(t, "noutati-fiscale-2026-3", resp.Slug)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, []string{"tva", "legislatie"}, resp.Tags)
}

func TestBlogService_PublishArchive(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockBlogRepository)
	publisher := &capturePublisher{}
	svc := NewBlogService(repo, nil)
	svc.SetEventPublisher(publisher)

	post, err := content.NewBlogPost(tenantID, uuid.New(), "ghid-e-factura", content.BlogDraft{Title: "Ghid e-Factura", Content: "Pași"})
	require.NoError(t, err)
	repo.On("FindByID", ctx, tenantID, post.ID).Return(post, nil)
	repo.On("SaveWithLock", ctx, post).Return(nil)

	resp, err := svc.Publish(ctx, tenantID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "published", resp.Status)
	assert.NotNil(t, resp.PublishedAt)
	require.Len(t, publisher.events, 1)

	_, err = svc.Publish(ctx, tenantID, post.ID)
	assert.Equal(t, "ALREADY_PUBLISHED", shared.ErrorCode(err))

	resp, err = svc.Archive(ctx, tenantID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "archived", resp.Status)

	_, err = svc.Update(ctx, tenantID, post.ID, BlogPostRequest{Title: "Alt titlu"})
	assert.Equal(t, "POST_ARCHIVED", shared.ErrorCode(err))
}

func TestBlogService_PublicReadsOnlySeePublished(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockBlogRepository)
	svc := NewBlogService(repo, nil)

	draft, err := content.NewBlogPost(tenantID, uuid.New(), "ciorna", content.BlogDraft{Title: "Ciornă", Content: "x"})
	require.NoError(t, err)
	live, err := content.NewBlogPost(tenantID, uuid.New(), "ghid", content.BlogDraft{Title: "Ghid", Content: "text"})
	require.NoError(t, err)
	require.NoError(t, live.Publish())

	repo.On("FindBySlug", ctx, tenantID, "ciorna").Return(draft, nil)
	repo.On("FindBySlug", ctx, tenantID, "ghid").Return(live, nil)
	repo.On("IncrementViews", ctx, tenantID, live.ID).Return(nil)

	_, err = svc.GetBySlug(ctx, tenantID, "ciorna", true)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := svc.GetBySlug(ctx, tenantID, "ciorna", false)
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)

	resp, err = svc.GetBySlug(ctx, tenantID, " GHID ", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Views)

	published := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "published" && f.OrderBy == "published_at" && f.Filters["tag"] == "tva"
	})
	repo.On("FindAll", ctx, tenantID, published).Return([]content.BlogPost{*live}, nil)
	repo.On("Count", ctx, tenantID, published).Return(int64(1), nil)

	items, total, err := svc.List(ctx, tenantID, BlogListFilter{Status: "draft", Tag: "TVA"}, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Content)
	assert.Equal(t, int64(1), total)
}

func TestBlogService_DeleteNotFound(t *testing.T) {
	ctx := context.Background()
	tenantID, id := uuid.New(), uuid.New()
	repo := new(MockBlogRepository)
	svc := NewBlogService(repo, nil)

	repo.On("FindByID", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, tenantID, id), shared.ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

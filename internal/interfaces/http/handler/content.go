package handler

import (
	"context"
	"slices"

	appcontent "github.com/documentiulia/backend/internal/application/content"
	"github.com/documentiulia/backend/internal/domain/identity"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ForumService interface {
	ListCategories(ctx context.Context, tenantID uuid.UUID) ([]appcontent.CategoryResponse, error)
	CreateCategory(ctx context.Context, tenantID uuid.UUID, req appcontent.CreateCategoryRequest) (*appcontent.CategoryResponse, error)
	ListTopics(ctx context.Context, tenantID uuid.UUID, filter appcontent.TopicListFilter) ([]appcontent.TopicResponse, int64, error)
	GetTopic(ctx context.Context, tenantID, id uuid.UUID) (*appcontent.TopicResponse, error)
	CreateTopic(ctx context.Context, tenantID uuid.UUID, actor appcontent.Actor, req appcontent.CreateTopicRequest) (*appcontent.TopicResponse, error)
	UpdateTopic(ctx context.Context, tenantID, id uuid.UUID, actor appcontent.Actor, req appcontent.UpdateTopicRequest) (*appcontent.TopicResponse, error)
	DeleteTopic(ctx context.Context, tenantID, id uuid.UUID, actor appcontent.Actor) error
	PinTopic(ctx context.Context, tenantID, id uuid.UUID, actor appcontent.Actor, pinned bool) (*appcontent.TopicResponse, error)
	LockTopic(ctx context.Context, tenantID, id uuid.UUID, actor appcontent.Actor, locked bool) (*appcontent.TopicResponse, error)
	ListPosts(ctx context.Context, tenantID, topicID uuid.UUID, filter appcontent.PostListFilter) ([]appcontent.PostResponse, int64, error)
	Reply(ctx context.Context, tenantID, topicID uuid.UUID, actor appcontent.Actor, req appcontent.ReplyRequest) (*appcontent.PostResponse, error)
	AcceptAnswer(ctx context.Context, tenantID, postID uuid.UUID, actor appcontent.Actor) (*appcontent.PostResponse, error)
}

type BlogService interface {
	List(ctx context.Context, tenantID uuid.UUID, filter appcontent.BlogListFilter, public bool) ([]appcontent.BlogPostResponse, int64, error)
	GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string, public bool) (*appcontent.BlogPostResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appcontent.BlogPostResponse, error)
	Create(ctx context.Context, tenantID, authorID uuid.UUID, req appcontent.BlogPostRequest) (*appcontent.BlogPostResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appcontent.BlogPostRequest) (*appcontent.BlogPostResponse, error)
	Publish(ctx context.Context, tenantID, id uuid.UUID) (*appcontent.BlogPostResponse, error)
	Archive(ctx context.Context, tenantID, id uuid.UUID) (*appcontent.BlogPostResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type PinTopicRequest struct {
	Pinned *bool `json:"pinned" binding:"required"`
}

type LockTopicRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// ContentHandler serves the community forum and the blog. Public blog routes
// read the posts of a single configured tenant.
type ContentHandler struct {
	BaseHandler
	forum      ForumService
	blog       BlogService
	blogTenant uuid.UUID
}

func NewContentHandler(forum ForumService, blog BlogService, blogTenant uuid.UUID) *ContentHandler {
	return &ContentHandler{forum: forum, blog: blog, blogTenant: blogTenant}
}

// actor builds the acting user; the moderate permission unlocks pin, lock and
// removal of other users' topics.
func (h *ContentHandler) actor(c *gin.Context) (uuid.UUID, appcontent.Actor, bool) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return uuid.Nil, appcontent.Actor{}, false
	}
	return tenantID, appcontent.Actor{
		UserID:    userID,
		Moderator: slices.Contains(middleware.GetJWTPermissions(c), identity.PermContentModerate),
	}, true
}

// ListCategories godoc
// @ID           listForumCategories
// @Summary      List forum categories
// @Tags         forum
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[[]appcontent.CategoryResponse]
// @Router       /forum/categories [get]
func (h *ContentHandler) ListCategories(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	categories, err := h.forum.ListCategories(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// CreateCategory godoc
// @ID           createForumCategory
// @Summary      Create a forum category
// @Tags         forum
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appcontent.CreateCategoryRequest true "Category"
// @Success      201 {object} APIResponse[appcontent.CategoryResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /forum/categories [post]
func (h *ContentHandler) CreateCategory(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var req appcontent.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	category, err := h.forum.CreateCategory(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// ListTopics godoc
// @ID           listForumTopics
// @Summary      List forum topics
// @Description  Pinned topics come first, then the most recent activity.
// @Tags         forum
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Title"
// @Param        category_id query string false "Category ID"
// @Param        author_id query string false "Author ID"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appcontent.TopicResponse]
// @Router       /forum/topics [get]
func (h *ContentHandler) ListTopics(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var filter appcontent.TopicListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	topics, total, err := h.forum.ListTopics(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, topics, total, filter.Page, filter.PageSize)
}

// GetTopic godoc
// @ID           getForumTopic
// @Summary      Get a forum topic
// @Tags         forum
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Topic ID"
// @Success      200 {object} APIResponse[appcontent.TopicResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /forum/topics/{id} [get]
func (h *ContentHandler) GetTopic(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	topic, err := h.forum.GetTopic(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, topic)
}

// CreateTopic godoc
// @ID           createForumTopic
// @Summary      Open a forum topic
// @Tags         forum
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appcontent.CreateTopicRequest true "Topic"
// @Success      201 {object} APIResponse[appcontent.TopicResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /forum/topics [post]
func (h *ContentHandler) CreateTopic(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appcontent.CreateTopicRequest
	if !h.BindJSON(c, &req) {
		return
	}
	topic, err := h.forum.CreateTopic(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, topic)
}

// UpdateTopic godoc
// @ID           updateForumTopic
// @Summary      Edit a forum topic
// @Description  Only the author may edit.
// @Tags         forum
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Topic ID"
// @Param        request body appcontent.UpdateTopicRequest true "Topic"
// @Success      200 {object} APIResponse[appcontent.TopicResponse]
// @Failure      403 {object} ErrorResponse
// @Router       /forum/topics/{id} [put]
func (h *ContentHandler) UpdateTopic(c *gin.Context) {
	var req appcontent.UpdateTopicRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withTopic(c, func(ctx context.Context, tenantID, id uuid.UUID, actor appcontent.Actor) (*appcontent.TopicResponse, error) {
		return h.forum.UpdateTopic(ctx, tenantID, id, actor, req)
	})
}

// DeleteTopic godoc
// @ID           deleteForumTopic
// @Summary      Delete a forum topic
// @Description  Authors delete their own topics; moderators delete any.
// @Tags         forum
// @Security     BearerAuth
// @Param        id path string true "Topic ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Router       /forum/topics/{id} [delete]
func (h *ContentHandler) DeleteTopic(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.forum.DeleteTopic(c.Request.Context(), tenantID, id, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PinTopic godoc
// @ID           pinForumTopic
// @Summary      Pin or unpin a topic
// @Tags         forum
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Topic ID"
// @Param        request body PinTopicRequest true "Pinned flag"
// @Success      200 {object} APIResponse[appcontent.TopicResponse]
// @Failure      403 {object} ErrorResponse
// @Router       /forum/topics/{id}/pin [post]
func (h *ContentHandler) PinTopic(c *gin.Context) {
	var req PinTopicRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withTopic(c, func(ctx context.Context, tenantID, id uuid.UUID, actor appcontent.Actor) (*appcontent.TopicResponse, error) {
		return h.forum.PinTopic(ctx, tenantID, id, actor, *req.Pinned)
	})
}

// LockTopic godoc
// @ID           lockForumTopic
// @Summary      Lock or unlock a topic
// @Description  Locked topics take no replies.
// @Tags         forum
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Topic ID"
// @Param        request body LockTopicRequest true "Locked flag"
// @Success      200 {object} APIResponse[appcontent.TopicResponse]
// @Failure      403 {object} ErrorResponse
// @Router       /forum/topics/{id}/lock [post]
func (h *ContentHandler) LockTopic(c *gin.Context) {
	var req LockTopicRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withTopic(c, func(ctx context.Context, tenantID, id uuid.UUID, actor appcontent.Actor) (*appcontent.TopicResponse, error) {
		return h.forum.LockTopic(ctx, tenantID, id, actor, *req.Locked)
	})
}

// ListPosts godoc
// @ID           listForumPosts
// @Summary      List replies of a topic
// @Tags         forum
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Topic ID"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appcontent.PostResponse]
// @Router       /forum/topics/{id}/posts [get]
func (h *ContentHandler) ListPosts(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	topicID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var filter appcontent.PostListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	posts, total, err := h.forum.ListPosts(c.Request.Context(), tenantID, topicID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, posts, total, filter.Page, filter.PageSize)
}

// Reply godoc
// @ID           replyForumTopic
// @Summary      Reply to a topic
// @Tags         forum
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Topic ID"
// @Param        request body appcontent.ReplyRequest true "Reply"
// @Success      201 {object} APIResponse[appcontent.PostResponse]
// @Failure      422 {object} ErrorResponse "TOPIC_LOCKED"
// @Router       /forum/topics/{id}/posts [post]
func (h *ContentHandler) Reply(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	topicID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appcontent.ReplyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	post, err := h.forum.Reply(c.Request.Context(), tenantID, topicID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, post)
}

// AcceptAnswer godoc
// @ID           acceptForumAnswer
// @Summary      Accept a reply as the answer
// @Description  Only the topic author may accept.
// @Tags         forum
// @Produce      json
// @Security     BearerAuth
// @Param        postId path string true "Post ID"
// @Success      200 {object} APIResponse[appcontent.PostResponse]
// @Failure      403 {object} ErrorResponse
// @Router       /forum/posts/{postId}/accept [post]
func (h *ContentHandler) AcceptAnswer(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	postID, ok := h.pathID(c, "postId")
	if !ok {
		return
	}
	post, err := h.forum.AcceptAnswer(c.Request.Context(), tenantID, postID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, post)
}

// PublicBlogList godoc
// @ID           listPublicBlogPosts
// @Summary      List published blog posts
// @Tags         blog
// @Produce      json
// @Param        search query string false "Title"
// @Param        tag query string false "Tag"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appcontent.BlogPostResponse]
// @Router       /blog [get]
func (h *ContentHandler) PublicBlogList(c *gin.Context) {
	var filter appcontent.BlogListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if h.blogTenant == uuid.Nil {
		h.SuccessWithMeta(c, []appcontent.BlogPostResponse{}, 0, filter.Page, filter.PageSize)
		return
	}
	posts, total, err := h.blog.List(c.Request.Context(), h.blogTenant, filter, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, posts, total, filter.Page, filter.PageSize)
}

// PublicBlogPost godoc
// @ID           getPublicBlogPost
// @Summary      Read a published blog post
// @Description  Each read counts as a view.
// @Tags         blog
// @Produce      json
// @Param        slug path string true "Slug"
// @Success      200 {object} APIResponse[appcontent.BlogPostResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /blog/{slug} [get]
func (h *ContentHandler) PublicBlogPost(c *gin.Context) {
	if h.blogTenant == uuid.Nil {
		h.HandleError(c, shared.ErrNotFound)
		return
	}
	post, err := h.blog.GetBySlug(c.Request.Context(), h.blogTenant, c.Param("slug"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, post)
}

// ListBlogPosts godoc
// @ID           listBlogPosts
// @Summary      List blog posts of the account in any status
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Title"
// @Param        status query string false "draft, published or archived"
// @Param        tag query string false "Tag"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appcontent.BlogPostResponse]
// @Router       /admin/blog/posts [get]
func (h *ContentHandler) ListBlogPosts(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var filter appcontent.BlogListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	posts, total, err := h.blog.List(c.Request.Context(), tenantID, filter, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, posts, total, filter.Page, filter.PageSize)
}

// GetBlogPost godoc
// @ID           getBlogPost
// @Summary      Get a blog post by ID
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200 {object} APIResponse[appcontent.BlogPostResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/blog/posts/{id} [get]
func (h *ContentHandler) GetBlogPost(c *gin.Context) {
	h.withBlogPost(c, h.blog.GetByID)
}

// CreateBlogPost godoc
// @ID           createBlogPost
// @Summary      Write a draft blog post
// @Tags         blog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appcontent.BlogPostRequest true "Post"
// @Success      201 {object} APIResponse[appcontent.BlogPostResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/blog/posts [post]
func (h *ContentHandler) CreateBlogPost(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req appcontent.BlogPostRequest
	if !h.BindJSON(c, &req) {
		return
	}
	post, err := h.blog.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, post)
}

// UpdateBlogPost godoc
// @ID           updateBlogPost
// @Summary      Edit a blog post
// @Tags         blog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body appcontent.BlogPostRequest true "Post"
// @Success      200 {object} APIResponse[appcontent.BlogPostResponse]
// @Router       /admin/blog/posts/{id} [put]
func (h *ContentHandler) UpdateBlogPost(c *gin.Context) {
	var req appcontent.BlogPostRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withBlogPost(c, func(ctx context.Context, tenantID, id uuid.UUID) (*appcontent.BlogPostResponse, error) {
		return h.blog.Update(ctx, tenantID, id, req)
	})
}

// PublishBlogPost godoc
// @ID           publishBlogPost
// @Summary      Publish a blog post
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200 {object} APIResponse[appcontent.BlogPostResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/blog/posts/{id}/publish [post]
func (h *ContentHandler) PublishBlogPost(c *gin.Context) {
	h.withBlogPost(c, h.blog.Publish)
}

// ArchiveBlogPost godoc
// @ID           archiveBlogPost
// @Summary      Archive a blog post
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200 {object} APIResponse[appcontent.BlogPostResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/blog/posts/{id}/archive [post]
func (h *ContentHandler) ArchiveBlogPost(c *gin.Context) {
	h.withBlogPost(c, h.blog.Archive)
}

// DeleteBlogPost godoc
// @ID           deleteBlogPost
// @Summary      Delete a blog post
// @Tags         blog
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      204
// @Router       /admin/blog/posts/{id} [delete]
func (h *ContentHandler) DeleteBlogPost(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.blog.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ContentHandler) withTopic(c *gin.Context, action func(ctx context.Context, tenantID, id uuid.UUID, actor appcontent.Actor) (*appcontent.TopicResponse, error)) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	topic, err := action(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, topic)
}

func (h *ContentHandler) withBlogPost(c *gin.Context, action func(ctx context.Context, tenantID, id uuid.UUID) (*appcontent.BlogPostResponse, error)) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	post, err := action(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, post)
}

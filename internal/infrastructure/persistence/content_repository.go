package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/documentiulia/backend/internal/domain/content"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/models"
	"github.com/documentiulia/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormForumRepository implements content.ForumRepository using GORM
type GormForumRepository struct {
	db *gorm.DB
}

func NewGormForumRepository(db *gorm.DB) *GormForumRepository {
	return &GormForumRepository{db: db}
}

func (r *GormForumRepository) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]content.ForumCategory, error) {
	var categoryModels []models.ForumCategoryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Order("position ASC, name ASC").
		Find(&categoryModels).Error; err != nil {
		return nil, err
	}

	categories := make([]content.ForumCategory, len(categoryModels))
	for i := range categoryModels {
		categories[i] = *categoryModels[i].ToDomain()
	}
	return categories, nil
}

func (r *GormForumRepository) FindCategory(ctx context.Context, tenantID, id uuid.UUID) (*content.ForumCategory, error) {
	var model models.ForumCategoryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormForumRepository) CategorySlugExists(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	return r.exists(ctx, &models.ForumCategoryModel{}, tenantID, "slug = ?", slug)
}

func (r *GormForumRepository) SaveCategory(ctx context.Context, category *content.ForumCategory) error {
	return r.db.WithContext(ctx).Save(models.ForumCategoryModelFromDomain(category)).Error
}

func (r *GormForumRepository) FindTopic(ctx context.Context, tenantID, id uuid.UUID) (*content.ForumTopic, error) {
	var model models.ForumTopicModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormForumRepository) FindTopics(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]content.ForumTopic, error) {
	var topicModels []models.ForumTopicModel
	query := r.db.WithContext(ctx).Model(&models.ForumTopicModel{}).Scopes(tenant.TenantScope(tenantID))
	query = r.applyTopicFilter(query, filter).Order("pinned DESC")
	query = paginate(query, filter, ForumTopicSortFields, "created_at")

	if err := query.Find(&topicModels).Error; err != nil {
		return nil, err
	}

	topics := make([]content.ForumTopic, len(topicModels))
	for i := range topicModels {
		topics[i] = *topicModels[i].ToDomain()
	}
	return topics, nil
}

func (r *GormForumRepository) CountTopics(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ForumTopicModel{}).Scopes(tenant.TenantScope(tenantID))
	if err := r.applyTopicFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormForumRepository) SaveTopic(ctx context.Context, topic *content.ForumTopic) error {
	return r.db.WithContext(ctx).Save(models.ForumTopicModelFromDomain(topic)).Error
}

// IncrementTopicViews bumps the counter in SQL so concurrent readers never lose a view
func (r *GormForumRepository) IncrementTopicViews(ctx context.Context, tenantID, id uuid.UUID) error {
	return incrementViews(r.db.WithContext(ctx), &models.ForumTopicModel{}, tenantID, id)
}

func (r *GormForumRepository) DeleteTopic(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(tenant.TenantScope(tenantID)).
			Where("topic_id = ?", id).
			Delete(&models.ForumPostModel{}).Error; err != nil {
			return err
		}
		result := tx.Scopes(tenant.TenantScope(tenantID)).Delete(&models.ForumTopicModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormForumRepository) FindPost(ctx context.Context, tenantID, id uuid.UUID) (*content.ForumPost, error) {
	var model models.ForumPostModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPosts returns the replies of a topic in conversation order
func (r *GormForumRepository) FindPosts(ctx context.Context, tenantID, topicID uuid.UUID, filter shared.Filter) ([]content.ForumPost, error) {
	var postModels []models.ForumPostModel
	query := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("topic_id = ?", topicID).
		Order("created_at ASC, id ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]content.ForumPost, len(postModels))
	for i := range postModels {
		posts[i] = *postModels[i].ToDomain()
	}
	return posts, nil
}

func (r *GormForumRepository) CountPosts(ctx context.Context, tenantID, topicID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ForumPostModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("topic_id = ?", topicID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormForumRepository) SaveReply(ctx context.Context, topic *content.ForumTopic, post *content.ForumPost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ForumPostModelFromDomain(post)).Error; err != nil {
			return err
		}
		return tx.Save(models.ForumTopicModelFromDomain(topic)).Error
	})
}

func (r *GormForumRepository) SavePost(ctx context.Context, post *content.ForumPost) error {
	return r.db.WithContext(ctx).Save(models.ForumPostModelFromDomain(post)).Error
}

func (r *GormForumRepository) applyTopicFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", searchPattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "author_id":
			query = query.Where("author_id = ?", value)
		}
	}
	return query
}

func (r *GormForumRepository) exists(ctx context.Context, model any, tenantID uuid.UUID, cond string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Scopes(tenant.TenantScope(tenantID)).
		Where(cond, args...).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ content.ForumRepository = (*GormForumRepository)(nil)

func incrementViews(db *gorm.DB, model any, tenantID, id uuid.UUID) error {
	result := db.Model(model).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormBlogRepository implements content.BlogRepository using GORM
type GormBlogRepository struct {
	db *gorm.DB
}

func NewGormBlogRepository(db *gorm.DB) *GormBlogRepository {
	return &GormBlogRepository{db: db}
}

func (r *GormBlogRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*content.BlogPost, error) {
	return r.findOne(ctx, tenantID, "id = ?", id)
}

func (r *GormBlogRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*content.BlogPost, error) {
	return r.findOne(ctx, tenantID, "slug = ?", slug)
}

func (r *GormBlogRepository) findOne(ctx context.Context, tenantID uuid.UUID, cond string, arg any) (*content.BlogPost, error) {
	var model models.BlogPostModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where(cond, arg).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormBlogRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]content.BlogPost, error) {
	var postModels []models.BlogPostModel
	query := r.db.WithContext(ctx).Model(&models.BlogPostModel{}).Scopes(tenant.TenantScope(tenantID))
	query = paginate(r.applyFilter(query, filter), filter, BlogPostSortFields, "created_at")

	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]content.BlogPost, len(postModels))
	for i := range postModels {
		posts[i] = *postModels[i].ToDomain()
	}
	return posts, nil
}

func (r *GormBlogRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.BlogPostModel{}).Scopes(tenant.TenantScope(tenantID))
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormBlogRepository) SlugExists(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BlogPostModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormBlogRepository) IncrementViews(ctx context.Context, tenantID, id uuid.UUID) error {
	return incrementViews(r.db.WithContext(ctx), &models.BlogPostModel{}, tenantID, id)
}

func (r *GormBlogRepository) Save(ctx context.Context, post *content.BlogPost) error {
	if err := r.db.WithContext(ctx).Save(models.BlogPostModelFromDomain(post)).Error; err != nil {
		return err
	}
	post.MarkStored()
	return nil
}

func (r *GormBlogRepository) SaveWithLock(ctx context.Context, post *content.BlogPost) error {
	model := models.BlogPostModelFromDomain(post)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", post.ID, post.StoredVersion()).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The blog post has been modified by another transaction")
	}
	post.MarkStored()
	return nil
}

func (r *GormBlogRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Delete(&models.BlogPostModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormBlogRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("title ILIKE ? OR excerpt ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "author_id":
			query = query.Where("author_id = ?", value)
		case "tag":
			query = query.Where("tags @> ?", toJSONArray(value))
		}
	}
	return query
}

var _ content.BlogRepository = (*GormBlogRepository)(nil)

// toJSONArray wraps a single value as a jsonb array literal for @> containment checks.
func toJSONArray(value any) string {
	b, err := json.Marshal([]string{fmt.Sprint(value)})
	if err != nil {
		return "[]"
	}
	return string(b)
}

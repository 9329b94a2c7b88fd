package memory

import (
	"context"
	"strings"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

var (
	_ repository.ArticleRepository      = (*ArticleRepo)(nil)
	_ repository.CommentRepository      = (*CommentRepo)(nil)
	_ repository.CategoryRepository     = (*Store[*entity.Category])(nil)
	_ repository.UserRepository         = (*Store[*entity.User])(nil)
	_ repository.SubscriptionRepository = (*Store[*entity.Subscription])(nil)
)

// ArticleRepo is the in-memory article store.
type ArticleRepo struct {
	*Store[*entity.Article]
}

// NewArticleRepo creates an empty in-memory article repository.
func NewArticleRepo() *ArticleRepo {
	return &ArticleRepo{Store: NewStore[*entity.Article]()}
}

// Search matches keyword against title and content, ignoring case.
// An empty keyword matches every article.
func (r *ArticleRepo) Search(ctx context.Context, keyword string) ([]*entity.Article, error) {
	kw := strings.ToLower(keyword)
	return r.Find(ctx, func(a *entity.Article) bool {
		return strings.Contains(strings.ToLower(a.Title), kw) ||
			strings.Contains(strings.ToLower(a.Content), kw)
	})
}

// CommentRepo is the in-memory comment store.
type CommentRepo struct {
	*Store[*entity.Comment]
}

// NewCommentRepo creates an empty in-memory comment repository.
func NewCommentRepo() *CommentRepo {
	return &CommentRepo{Store: NewStore[*entity.Comment]()}
}

// ListByArticle returns the comments on articleID in creation order.
func (r *CommentRepo) ListByArticle(ctx context.Context, articleID string) ([]*entity.Comment, error) {
	return r.Find(ctx, func(c *entity.Comment) bool { return c.ArticleID == articleID })
}

// DeleteByArticle removes the comments on articleID.
func (r *CommentRepo) DeleteByArticle(ctx context.Context, articleID string) (int, error) {
	return r.DeleteWhere(ctx, func(c *entity.Comment) bool { return c.ArticleID == articleID })
}

// NewCategoryRepo creates an empty in-memory category repository.
func NewCategoryRepo() *Store[*entity.Category] { return NewStore[*entity.Category]() }

// NewUserRepo creates an empty in-memory user repository.
func NewUserRepo() *Store[*entity.User] { return NewStore[*entity.User]() }

// NewSubscriptionRepo creates an empty in-memory subscription repository.
func NewSubscriptionRepo() *Store[*entity.Subscription] { return NewStore[*entity.Subscription]() }

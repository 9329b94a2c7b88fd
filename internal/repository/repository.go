// Package repository declares the storage contracts used by the use cases.
// Every manager is a keyed collection of one entity kind; the generic Repository
// captures the shared create/read/modify/delete contract and the per-entity
// interfaces add the queries each kind needs.
package repository

import (
	"context"

	"newsdesk/internal/domain/entity"
)

// Entity is the constraint for records held by a Repository.
// Clone must return a deep copy so stored records are never shared with callers.
type Entity[T any] interface {
	Key() string
	Clone() T
}

// Repository is a keyed collection that preserves insertion order.
//
// Contract:
//   - Insert fails with entity.ErrAlreadyExists when the key is taken.
//   - Get and Modify fail with entity.ErrNotFound when the key is absent.
//   - Delete is idempotent: removing a missing key is not an error.
//   - List returns records in stored order (insertion order until SortStable is called).
type Repository[T Entity[T]] interface {
	Insert(ctx context.Context, item T) error
	Get(ctx context.Context, id string) (T, error)
	// Modify applies fn to the stored record under the collection's write lock.
	// If fn returns an error the stored record is left untouched.
	Modify(ctx context.Context, id string, fn func(T) error) (T, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]T, error)
	// SortStable sorts the stored records by cmp, keeps that as the stored
	// order and returns the sorted records. Reading, sorting and writing back
	// happen as one write, so no insert or delete can land in between.
	// cmp must not call back into the repository.
	SortStable(ctx context.Context, cmp func(a, b T) int) ([]T, error)
}

// ArticleRepository stores articles.
type ArticleRepository interface {
	Repository[*entity.Article]
	// Search returns articles whose title or content contains keyword, ignoring case,
	// in stored order.
	Search(ctx context.Context, keyword string) ([]*entity.Article, error)
}

// CategoryRepository stores categories.
type CategoryRepository interface {
	Repository[*entity.Category]
}

// CommentRepository stores comments.
type CommentRepository interface {
	Repository[*entity.Comment]
	ListByArticle(ctx context.Context, articleID string) ([]*entity.Comment, error)
	// DeleteByArticle removes every comment on the article and reports how many were removed.
	DeleteByArticle(ctx context.Context, articleID string) (int, error)
}

// UserRepository stores users keyed by username.
type UserRepository interface {
	Repository[*entity.User]
}

// SubscriptionRepository stores feed preferences keyed by user ID.
type SubscriptionRepository interface {
	Repository[*entity.Subscription]
	// Upsert inserts the subscription or replaces an existing one.
	Upsert(ctx context.Context, sub *entity.Subscription) error
}

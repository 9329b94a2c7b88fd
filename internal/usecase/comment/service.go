package comment

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/internal/common/clock"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/idgen"
	"newsdesk/internal/repository"
)

// CreateInput represents the input parameters for a new comment.
type CreateInput struct {
	ArticleID string
	Content   string
	Author    string
}

// Service provides comment management use cases.
// Articles, when set, is consulted so that comments can only be attached to existing articles.
type Service struct {
	Repo     repository.CommentRepository
	Articles repository.ArticleRepository
	IDs      idgen.Generator
	Clock    clock.Clock
}

// Create stores a comment stamped with the current time.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Comment, error) {
	for _, f := range []struct{ name, value string }{
		{"articleId", in.ArticleID},
		{"content", in.Content},
		{"author", in.Author},
	} {
		if err := entity.Required(f.name, f.value); err != nil {
			return nil, err
		}
	}

	if err := s.checkArticle(ctx, in.ArticleID); err != nil {
		return nil, err
	}

	ids := s.IDs
	if ids == nil {
		ids = idgen.UUID{}
	}
	clk := s.Clock
	if clk == nil {
		clk = clock.System{}
	}

	c := &entity.Comment{
		ID:         ids.NewID(),
		ArticleID:  in.ArticleID,
		Content:    in.Content,
		Author:     in.Author,
		CreateDate: clk.Now(),
	}
	if err := s.Repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	// 記事削除は記事→コメントの順に消すので、挿入後にもう一度確認する。
	// ここで記事が見えていれば、後続の削除が必ずこのコメントも消す。
	if err := s.checkArticle(ctx, in.ArticleID); err != nil {
		if derr := s.Repo.Delete(ctx, c.ID); derr != nil {
			return nil, fmt.Errorf("create comment: %w", errors.Join(err, derr))
		}
		return nil, err
	}
	return c, nil
}

// checkArticle fails with ErrArticleNotFound when Articles is set and has no
// article under id.
func (s *Service) checkArticle(ctx context.Context, id string) error {
	if s.Articles == nil {
		return nil
	}
	if _, err := s.Articles.Get(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return fmt.Errorf("create comment: %w", ErrArticleNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// Edit replaces the comment text. Author, article and date are fixed at creation.
func (s *Service) Edit(ctx context.Context, id, content string) (*entity.Comment, error) {
	if err := entity.Required("content", content); err != nil {
		return nil, err
	}
	c, err := s.Repo.Modify(ctx, id, func(c *entity.Comment) error {
		c.Content = content
		return nil
	})
	if err != nil {
		return nil, wrap("edit comment", err)
	}
	return c, nil
}

// Delete removes a comment. Unknown IDs are ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// Get retrieves a comment by ID.
func (s *Service) Get(ctx context.Context, id string) (*entity.Comment, error) {
	c, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, wrap("get comment", err)
	}
	return c, nil
}

// List returns every comment in creation order.
func (s *Service) List(ctx context.Context) ([]*entity.Comment, error) {
	cs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return cs, nil
}

// ListByArticle returns the comments attached to an article.
func (s *Service) ListByArticle(ctx context.Context, articleID string) ([]*entity.Comment, error) {
	cs, err := s.Repo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments by article: %w", err)
	}
	return cs, nil
}

func wrap(op string, err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrCommentNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

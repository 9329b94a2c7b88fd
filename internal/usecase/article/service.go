package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsdesk/internal/common/clock"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/idgen"
	"newsdesk/internal/repository"
)

// CreateInput represents the input parameters for creating a new article.
// CreateDate may be empty, in which case the service stamps today's date.
type CreateInput struct {
	Title        string
	Content      string
	HeaderImage  string
	ContentImage string
	CreateDate   string
	Author       string
	Category     string
	Country      string
}

// EditInput replaces every mutable field of an article.
type EditInput CreateInput

// Order is a sort direction for SortByDate.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// ParseOrder accepts "asc" or "desc" (case-insensitive). Empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
}

// Catalog holds the reference data articles are validated against.
type Catalog interface {
	HasCountry(code string) bool
	HasCategory(name string) bool
}

// Publisher is told about freshly created articles.
type Publisher interface {
	Publish(ctx context.Context, art *entity.Article)
}

// Service provides article management use cases.
// It handles business logic for article operations and delegates persistence to the repository.
type Service struct {
	Repo  repository.ArticleRepository
	IDs   idgen.Generator
	Clock clock.Clock

	// Comments, when set, has an article's comments removed along with it.
	Comments repository.CommentRepository
	// Catalog, when set, restricts country and category values.
	Catalog Catalog
	// Publisher, when set, receives each created article.
	Publisher Publisher
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *Service) newID() string {
	if s.IDs == nil {
		return idgen.UUID{}.NewID()
	}
	return s.IDs.NewID()
}

func (s *Service) validate(in CreateInput) error {
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"content", in.Content},
		{"author", in.Author},
	} {
		if err := entity.Required(f.name, f.value); err != nil {
			return err
		}
	}
	if in.CreateDate != "" {
		if _, err := entity.ParseDate(in.CreateDate); err != nil {
			return err
		}
	}
	if s.Catalog != nil {
		if in.Country != "" && !s.Catalog.HasCountry(in.Country) {
			return &entity.ValidationError{Field: "country", Message: fmt.Sprintf("unknown country %q", in.Country)}
		}
		if in.Category != "" && !s.Catalog.HasCategory(in.Category) {
			return &entity.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", in.Category)}
		}
	}
	return nil
}

func apply(art *entity.Article, in CreateInput) {
	art.Title = in.Title
	art.Content = in.Content
	art.HeaderImage = in.HeaderImage
	art.ContentImage = in.ContentImage
	art.CreateDate = in.CreateDate
	art.Author = in.Author
	art.Category = in.Category
	art.Country = in.Country
}

// Create allocates an ID, builds the article and stores it.
// Returns a ValidationError if a required field is missing or a value is malformed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Article, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	if in.CreateDate == "" {
		in.CreateDate = s.now().Format(entity.DateLayout)
	}

	art := &entity.Article{ID: s.newID()}
	apply(art, in)

	if err := s.Repo.Insert(ctx, art); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	if s.Publisher != nil {
		s.Publisher.Publish(ctx, art.Clone())
	}
	return art, nil
}

// Edit overwrites every mutable field of the article atomically.
// Ratings and reviews are kept. Returns ErrArticleNotFound when id is unknown,
// in which case the collection is left unchanged.
func (s *Service) Edit(ctx context.Context, id string, in EditInput) (*entity.Article, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidArticleID
	}
	fields := CreateInput(in)
	if err := s.validate(fields); err != nil {
		return nil, err
	}

	art, err := s.Repo.Modify(ctx, id, func(a *entity.Article) error {
		if fields.CreateDate == "" {
			fields.CreateDate = a.CreateDate
		}
		apply(a, fields)
		return nil
	})
	if err != nil {
		return nil, s.wrap("edit article", err)
	}
	return art, nil
}

// Delete removes an article and, when a comment repository is configured,
// every comment attached to it. Deleting an unknown ID is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidArticleID
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if s.Comments != nil {
		n, err := s.Comments.DeleteByArticle(ctx, id)
		if err != nil {
			return fmt.Errorf("delete comments of article %s: %w", id, err)
		}
		if n > 0 {
			slog.DebugContext(ctx, "article comments removed",
				slog.String("article_id", id),
				slog.Int("count", n))
		}
	}
	return nil
}

// List returns every article in stored order.
func (s *Service) List(ctx context.Context) ([]*entity.Article, error) {
	articles, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Get retrieves a single article by its ID.
func (s *Service) Get(ctx context.Context, id string) (*entity.Article, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidArticleID
	}
	art, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, s.wrap("get article", err)
	}
	return art, nil
}

// Search finds articles whose title or content contains the keyword, ignoring case.
func (s *Service) Search(ctx context.Context, kw string) ([]*entity.Article, error) {
	articles, err := s.Repo.Search(ctx, kw)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return articles, nil
}

// SortByDate reorders the stored articles by their create date.
// The sort is stable, so articles with equal dates keep their relative order.
// Dates that cannot be parsed sort before every valid date.
func (s *Service) SortByDate(ctx context.Context, order Order) ([]*entity.Article, error) {
	if order != Ascending && order != Descending {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}

	// cmp はストアのロック内で呼ばれるので、日付の解析結果を使い回す
	dates := make(map[string]time.Time)
	dateOf := func(a *entity.Article) time.Time {
		t, ok := dates[a.ID]
		if !ok {
			t, _ = entity.ParseDate(a.CreateDate)
			dates[a.ID] = t
		}
		return t
	}

	articles, err := s.Repo.SortStable(ctx, func(a, b *entity.Article) int {
		c := dateOf(a).Compare(dateOf(b))
		if order == Descending {
			return -c
		}
		return c
	})
	if err != nil {
		return nil, fmt.Errorf("sort articles: %w", err)
	}
	return articles, nil
}

// AddRating records a reader rating for the article.
func (s *Service) AddRating(ctx context.Context, id string, value float64) (*entity.Article, error) {
	if err := entity.ValidateRating(value); err != nil {
		return nil, err
	}
	art, err := s.Repo.Modify(ctx, id, func(a *entity.Article) error {
		a.AddRating(value)
		return nil
	})
	if err != nil {
		return nil, s.wrap("add rating", err)
	}
	return art, nil
}

// AverageRating returns the mean rating of the article, 0 when unrated.
func (s *Service) AverageRating(ctx context.Context, id string) (float64, error) {
	art, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return art.AverageRating(), nil
}

// AddReview appends a review text to the article.
func (s *Service) AddReview(ctx context.Context, id, text string) (*entity.Article, error) {
	if err := entity.Required("review", text); err != nil {
		return nil, err
	}
	art, err := s.Repo.Modify(ctx, id, func(a *entity.Article) error {
		a.AddReview(text)
		return nil
	})
	if err != nil {
		return nil, s.wrap("add review", err)
	}
	return art, nil
}

// Reviews returns a copy of the article's reviews.
func (s *Service) Reviews(ctx context.Context, id string) ([]string, error) {
	art, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return art.ListReviews(), nil
}

// wrap maps repository not-found errors to ErrArticleNotFound.
func (s *Service) wrap(op string, err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrArticleNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Package postgres stores articles in PostgreSQL through the pgx stdlib driver.
// Stored order is kept in a position column so that List and SortStable behave
// like the in-memory store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

// uniqueViolation is the SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// DB is the subset of *sql.DB the repository needs.
// *circuitbreaker.DB satisfies it as well.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ArticleRepo struct {
	db DB
}

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

func NewArticleRepo(db DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

const articleColumns = `id, title, content, header_image, content_image, create_date,
       author, category, country, ratings, reviews`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		a                entity.Article
		ratings, reviews []byte
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.HeaderImage, &a.ContentImage,
		&a.CreateDate, &a.Author, &a.Category, &a.Country, &ratings, &reviews); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ratings, &a.Ratings); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	if err := json.Unmarshal(reviews, &a.Reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return &a, nil
}

func encodeLists(a *entity.Article) (ratings, reviews string, err error) {
	r := a.Ratings
	if r == nil {
		r = []float64{}
	}
	v := a.Reviews
	if v == nil {
		v = []string{}
	}
	rb, err := json.Marshal(r)
	if err != nil {
		return "", "", fmt.Errorf("encode ratings: %w", err)
	}
	vb, err := json.Marshal(v)
	if err != nil {
		return "", "", fmt.Errorf("encode reviews: %w", err)
	}
	return string(rb), string(vb), nil
}

func (repo *ArticleRepo) Insert(ctx context.Context, a *entity.Article) error {
	ratings, reviews, err := encodeLists(a)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	const query = `
INSERT INTO articles (id, title, content, header_image, content_image, create_date,
                      author, category, country, ratings, reviews)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = repo.db.ExecContext(ctx, query,
		a.ID, a.Title, a.Content, a.HeaderImage, a.ContentImage, a.CreateDate,
		a.Author, a.Category, a.Country, ratings, reviews)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("Insert %q: %w", a.ID, entity.ErrAlreadyExists)
		}
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id string) (*entity.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get %q: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

// Modify locks the row for the duration of fn and writes back the result.
func (repo *ArticleRepo) Modify(ctx context.Context, id string, fn func(*entity.Article) error) (*entity.Article, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Modify: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 FOR UPDATE`
	a, err := scanArticle(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Modify %q: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Modify: %w", err)
	}

	if err := fn(a); err != nil {
		return nil, err
	}
	if a.ID != id {
		return nil, &entity.ValidationError{Field: "id", Message: "cannot be changed"}
	}

	ratings, reviews, err := encodeLists(a)
	if err != nil {
		return nil, fmt.Errorf("Modify: %w", err)
	}
	const update = `
UPDATE articles
SET title = $2, content = $3, header_image = $4, content_image = $5, create_date = $6,
    author = $7, category = $8, country = $9, ratings = $10, reviews = $11
WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update,
		a.ID, a.Title, a.Content, a.HeaderImage, a.ContentImage, a.CreateDate,
		a.Author, a.Category, a.Country, ratings, reviews); err != nil {
		return nil, fmt.Errorf("Modify: update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Modify: commit: %w", err)
	}
	return a, nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) List(ctx context.Context) ([]*entity.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY position`
	return repo.query(ctx, "List", query)
}

// Search matches keyword with ILIKE against title and content.
// LIKE metacharacters in keyword are matched literally.
func (repo *ArticleRepo) Search(ctx context.Context, keyword string) ([]*entity.Article, error) {
	query := `SELECT ` + articleColumns + `
FROM articles
WHERE title ILIKE $1 OR content ILIKE $1
ORDER BY position`
	return repo.query(ctx, "Search", query, "%"+escapeLike(keyword)+"%")
}

// SortStable sorts every article by cmp and rewrites the positions inside one
// transaction. SHARE ROW EXCLUSIVE blocks inserts, updates and deletes (and
// other sorts) until commit, so the order written back matches the rows read.
// Positions restart at 1; the position sequence is always ahead of the row
// count, so later inserts still land at the end.
func (repo *ArticleRepo) SortStable(ctx context.Context, cmp func(a, b *entity.Article) int) ([]*entity.Article, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("SortStable: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE articles IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, fmt.Errorf("SortStable: lock: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("SortStable: %w", err)
	}
	articles := make([]*entity.Article, 0, 16)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("SortStable: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SortStable: %w", err)
	}

	slices.SortStableFunc(articles, cmp)

	for i, a := range articles {
		if _, err := tx.ExecContext(ctx, `UPDATE articles SET position = $2 WHERE id = $1`, a.ID, i+1); err != nil {
			return nil, fmt.Errorf("SortStable: update: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("SortStable: commit: %w", err)
	}
	return articles, nil
}

func (repo *ArticleRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 16)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

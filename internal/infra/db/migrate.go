package db

import (
	"context"
	"database/sql"
	"fmt"
)

// MigrateUp creates the articles table and its indexes. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS articles (
    id            TEXT PRIMARY KEY,
    position      BIGSERIAL NOT NULL,
    title         TEXT NOT NULL,
    content       TEXT NOT NULL,
    header_image  TEXT NOT NULL DEFAULT '',
    content_image TEXT NOT NULL DEFAULT '',
    create_date   TEXT NOT NULL,
    author        TEXT NOT NULL,
    category      TEXT NOT NULL DEFAULT '',
    country       TEXT NOT NULL DEFAULT '',
    ratings       JSONB NOT NULL DEFAULT '[]',
    reviews       JSONB NOT NULL DEFAULT '[]'
)`); err != nil {
		return fmt.Errorf("create articles: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_articles_position ON articles(position)`); err != nil {
		return fmt.Errorf("create position index: %w", err)
	}

	// pg_trgm が使えない環境(権限不足など)では ILIKE の全件走査で動作する
	_, _ = db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_title_gin ON articles USING gin(title gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_content_gin ON articles USING gin(content gin_trgm_ops)`,
	} {
		_, _ = db.ExecContext(ctx, idx)
	}
	return nil
}

// MigrateDown drops the articles table. All stored articles are lost.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS articles CASCADE`); err != nil {
		return fmt.Errorf("drop articles: %w", err)
	}
	return nil
}

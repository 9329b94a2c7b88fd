// Package db opens the PostgreSQL connection pool and manages the article schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// pingTimeout bounds the start-up connectivity check.
const pingTimeout = 5 * time.Second

// Pool sizes the database/sql pool in front of pgx.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// DefaultPool suits a single API process with the default notifier fan-out.
func DefaultPool() Pool {
	return Pool{
		MaxOpen:     25,
		MaxIdle:     10,
		MaxLifetime: time.Hour,
		MaxIdleTime: 30 * time.Minute,
	}
}

// Apply sets the pool limits on db.
func (p Pool) Apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
	db.SetConnMaxIdleTime(p.MaxIdleTime)
}

// Open parses dsn with pgx, builds the pool and pings the server. A malformed
// DSN fails here, before any connection attempt.
func Open(ctx context.Context, dsn string, pool Pool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database url is empty")
	}
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	db := stdlib.OpenDB(*connCfg)
	pool.Apply(db)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s/%s: %w", connCfg.Host, connCfg.Database, err)
	}

	// パスワードを含む DSN そのものはログに出さない
	slog.Info("database connected",
		slog.String("host", connCfg.Host),
		slog.String("database", connCfg.Database),
		slog.Int("max_open_conns", pool.MaxOpen),
		slog.Int("max_idle_conns", pool.MaxIdle))
	return db, nil
}

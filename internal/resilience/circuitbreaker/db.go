package circuitbreaker

import (
	"context"
	"database/sql"
)

// DB puts a breaker in front of a *sql.DB. It satisfies the postgres
// repository's DB interface, so an unreachable database fails requests at once
// instead of holding each one for the driver's connect timeout.
type DB struct {
	*Breaker
	db *sql.DB
}

// GuardDB wraps db with the ForDatabase breaker.
func GuardDB(db *sql.DB) *DB {
	return GuardDBWith(db, ForDatabase())
}

// GuardDBWith wraps db with a breaker built from cfg.
func GuardDBWith(db *sql.DB, cfg Config) *DB {
	return &DB{Breaker: New(cfg), db: db}
}

func (g *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return call(g.Breaker, func() (*sql.Rows, error) {
		return g.db.QueryContext(ctx, query, args...)
	})
}

func (g *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return call(g.Breaker, func() (sql.Result, error) {
		return g.db.ExecContext(ctx, query, args...)
	})
}

// BeginTx guards only the start of the transaction; statements run on the
// returned *sql.Tx bypass the breaker.
func (g *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return call(g.Breaker, func() (*sql.Tx, error) {
		return g.db.BeginTx(ctx, opts)
	})
}

// QueryRowContext is not guarded: sql.Row holds its error until Scan, after
// the breaker would have recorded the call.
func (g *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return g.db.QueryRowContext(ctx, query, args...)
}

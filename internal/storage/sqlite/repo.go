// Package sqlite stores imports in a local SQLite file through the pure-Go
// modernc.org/sqlite driver. It is the backend used by integration tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"elbimport/internal/sqlgen"
	"elbimport/internal/storage"
)

// Repo implements storage.Repository for SQLite.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

// New opens cfg.DSN, a file path or "file:" URI.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlite: missing dsn (database file path)")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) Dialect() sqlgen.Dialect { return Dialect }

func (r *Repo) TableExists(ctx context.Context, table string) (bool, error) {
	const q = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, table).Scan(&n); err != nil {
		return false, storage.ExecError(q, err)
	}
	return n > 0, nil
}

func (r *Repo) Exec(ctx context.Context, stmt string) error {
	_, err := r.db.ExecContext(ctx, stmt)
	return storage.ExecError(stmt, err)
}

// DB exposes the handle for read-back in tests and tooling.
func (r *Repo) DB() *sql.DB { return r.db }

// Package postgres executes generated statements through a pgx connection
// pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"elbimport/internal/sqlgen"
	"elbimport/internal/storage"
)

// Repo implements storage.Repository for Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

// New creates the pool and verifies connectivity. cfg.DSN is any libpq
// connection string or URL pgx understands.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid dsn: %w", err)
	}
	pcfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) Dialect() sqlgen.Dialect { return Dialect }

// TableExists resolves the quoted name with to_regclass, which honors
// search_path and schema-qualified names.
func (r *Repo) TableExists(ctx context.Context, table string) (bool, error) {
	const q = `SELECT to_regclass($1) IS NOT NULL`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, Dialect.QuoteIdent(table)).Scan(&exists); err != nil {
		return false, storage.ExecError(q, err)
	}
	return exists, nil
}

func (r *Repo) Exec(ctx context.Context, stmt string) error {
	_, err := r.pool.Exec(ctx, stmt)
	return storage.ExecError(stmt, err)
}

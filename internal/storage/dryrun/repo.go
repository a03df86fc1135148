// Package dryrun is a backend that prints statements instead of executing
// them. Its DSN names the dialect to render in (default mysql).
package dryrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"elbimport/internal/sqlgen"
	"elbimport/internal/storage"
	"elbimport/internal/storage/mssql"
	"elbimport/internal/storage/postgres"
	"elbimport/internal/storage/sqlite"
)

var dialects = map[string]sqlgen.Dialect{
	"":         sqlgen.MySQL,
	"mysql":    sqlgen.MySQL,
	"sqlite":   sqlite.Dialect,
	"postgres": postgres.Dialect,
	"mssql":    mssql.Dialect,
}

// Repo writes one statement per line to Out. Every table is reported as
// existing so a dry run without -create still renders the INSERTs.
type Repo struct {
	mu      sync.Mutex
	out     io.Writer
	dialect sqlgen.Dialect
}

func init() {
	storage.Register("dryrun", New)
}

func New(_ context.Context, cfg storage.Config) (storage.Repository, error) {
	d, ok := dialects[cfg.DSN]
	if !ok {
		return nil, fmt.Errorf("dryrun: unknown dialect %q (want mysql, sqlite, postgres or mssql)", cfg.DSN)
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	return &Repo{out: out, dialect: d}, nil
}

func (r *Repo) Close() {}

func (r *Repo) Dialect() sqlgen.Dialect { return r.dialect }

func (r *Repo) TableExists(context.Context, string) (bool, error) { return true, nil }

func (r *Repo) Exec(ctx context.Context, stmt string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintln(r.out, stmt)
	return storage.ExecError(stmt, err)
}

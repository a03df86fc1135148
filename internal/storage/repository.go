// Package storage is the database boundary of the importer. Backends register
// a factory under a kind ("mysql", "sqlite", ...) from an init function; the
// importer only sees the Repository interface.
package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"unicode/utf8"

	"elbimport/internal/sqlgen"
)

// Config is what a backend factory needs to open a repository.
//
// Edge cases:
//   - Kind must be non-empty and registered.
//   - DSN is passed through unchanged; validation is backend-specific.
//   - Out is only used by backends that write statements instead of
//     executing them (dryrun).
type Config struct {
	Kind string
	DSN  string
	Out  io.Writer
}

// Repository executes generated SQL against one database.
type Repository interface {
	// Close releases connections. Call once when done.
	Close()

	// Dialect is the SQL flavor statements must be rendered in.
	Dialect() sqlgen.Dialect

	// TableExists reports whether table is present in the current database.
	TableExists(ctx context.Context, table string) (bool, error)

	// Exec runs one statement. Failures are *SQLExecutionError.
	Exec(ctx context.Context, stmt string) error
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register makes a backend available under kind.
//
// Panics if kind is empty, f is nil, or kind is already registered.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New opens a repository with the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage kind=%s (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds lists registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SQLExecutionError is a statement the database rejected.
type SQLExecutionError struct {
	Statement string
	Err       error
}

// maxStmtInError keeps error lines readable for long INSERTs.
const maxStmtInError = 200

func (e *SQLExecutionError) Error() string {
	stmt := e.Statement
	if len(stmt) > maxStmtInError {
		n := maxStmtInError
		for n > 0 && !utf8.RuneStart(stmt[n]) {
			n--
		}
		stmt = stmt[:n] + "..."
	}
	return fmt.Sprintf("database error: %v (statement: %s)", e.Err, stmt)
}

func (e *SQLExecutionError) Unwrap() error { return e.Err }

// ExecError wraps err as a *SQLExecutionError, or returns nil.
func ExecError(stmt string, err error) error {
	if err == nil {
		return nil
	}
	return &SQLExecutionError{Statement: stmt, Err: err}
}

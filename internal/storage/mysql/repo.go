// Package mysql is the reference backend. It executes the generated MySQL
// statements through database/sql and go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"

	driver "github.com/go-sql-driver/mysql"

	"elbimport/internal/sqlgen"
	"elbimport/internal/storage"
)

// DefaultPort is appended to hosts given without one.
const DefaultPort = "3306"

// Repo implements storage.Repository for MySQL.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mysql", New)
}

// New opens and pings the database named by cfg.DSN (go-sql-driver format,
// see BuildDSN).
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	if _, err := driver.ParseDSN(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mysql: invalid dsn: %w", err)
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// Statements run one at a time in file order.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: connect: %w", err)
	}
	return &Repo{db: db}, nil
}

// BuildDSN renders connection parameters as a driver DSN. Multi-statement
// execution stays disabled, so a value that escapes its quotes still cannot
// chain a second statement.
func BuildDSN(host, user, password, database string) string {
	c := driver.NewConfig()
	c.User = user
	c.Passwd = password
	c.Net = "tcp"
	c.Addr = withPort(host)
	c.DBName = database
	c.MultiStatements = false
	return c.FormatDSN()
}

func withPort(host string) string {
	if host == "" {
		host = "localhost"
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), DefaultPort)
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) Dialect() sqlgen.Dialect { return sqlgen.MySQL }

// TableExists runs SHOW TABLES LIKE with the LIKE wildcards escaped, so
// "elb_logs" does not also match "elbXlogs".
func (r *Repo) TableExists(ctx context.Context, table string) (bool, error) {
	q := "SHOW TABLES LIKE '" + sqlgen.MySQL.EscapeString(likePattern(table)) + "'"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return false, storage.ExecError(q, err)
	}
	defer rows.Close()

	exists := rows.Next()
	if err := rows.Err(); err != nil {
		return false, storage.ExecError(q, err)
	}
	return exists, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string { return likeEscaper.Replace(s) }

func (r *Repo) Exec(ctx context.Context, stmt string) error {
	_, err := r.db.ExecContext(ctx, stmt)
	return storage.ExecError(stmt, err)
}

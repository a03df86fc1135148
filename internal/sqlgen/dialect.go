// Package sqlgen renders CREATE TABLE, DROP TABLE and INSERT statements from a
// field model. It never touches a connection; storage backends execute what
// it produces.
package sqlgen

import (
	"strings"

	"elbimport/internal/schema"
)

// Dialect captures the few places SQL engines disagree for this table shape.
type Dialect interface {
	Name() string

	// QuoteIdent quotes a table identifier.
	QuoteIdent(id string) string

	// ColumnType renders the DDL fragment for a semantic type.
	ColumnType(t schema.SQLType) string

	// KeyColumn renders the synthetic auto-increment primary key clause that
	// closes every CREATE TABLE column list.
	KeyColumn() string

	// EscapeString escapes a value so it can sit between single quotes.
	EscapeString(s string) string

	// StringLiteral wraps an already escaped value in the engine's string
	// literal syntax.
	StringLiteral(escaped string) string
}

// MySQL is the reference dialect.
var MySQL Dialect = mysqlDialect{}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

func (mysqlDialect) ColumnType(t schema.SQLType) string { return t.String() }

func (mysqlDialect) KeyColumn() string {
	return schema.KeyColumn + " BIGINT UNSIGNED NOT NULL AUTO_INCREMENT, PRIMARY KEY (" + schema.KeyColumn + ")"
}

var mysqlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

// EscapeString follows mysql_real_escape_string for the default sql_mode.
func (mysqlDialect) EscapeString(s string) string { return mysqlEscaper.Replace(s) }

func (mysqlDialect) StringLiteral(escaped string) string { return SingleQuoted(escaped) }

// SingleQuoted is the plain '...' literal.
func SingleQuoted(escaped string) string { return "'" + escaped + "'" }

// EscapeQuotes doubles single quotes; the ANSI escaping used by SQLite,
// Postgres (standard_conforming_strings) and SQL Server.
func EscapeQuotes(s string) string { return strings.ReplaceAll(s, "'", "''") }

// QuoteDouble quotes an identifier with ANSI double quotes.
func QuoteDouble(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

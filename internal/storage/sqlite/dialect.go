package sqlite

import (
	"elbimport/internal/schema"
	"elbimport/internal/sqlgen"
)

// Dialect renders statements for SQLite. Column types keep their MySQL
// spelling; SQLite maps them to affinities (VARCHAR -> TEXT, DOUBLE -> REAL,
// SMALLINT/BIGINT -> INTEGER) and ignores the length.
var Dialect sqlgen.Dialect = dialect{}

type dialect struct{}

func (dialect) Name() string { return "sqlite" }

func (dialect) QuoteIdent(id string) string { return sqlgen.QuoteDouble(id) }

func (dialect) ColumnType(t schema.SQLType) string { return t.String() }

// KeyColumn uses INTEGER PRIMARY KEY, the only spelling SQLite accepts for
// AUTOINCREMENT.
func (dialect) KeyColumn() string {
	return schema.KeyColumn + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (dialect) EscapeString(s string) string { return sqlgen.EscapeQuotes(s) }

func (dialect) StringLiteral(escaped string) string { return sqlgen.SingleQuoted(escaped) }

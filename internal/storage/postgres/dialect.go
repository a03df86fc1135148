package postgres

import (
	"fmt"
	"strings"

	"elbimport/internal/schema"
	"elbimport/internal/sqlgen"
)

// Dialect renders statements for Postgres with standard_conforming_strings on.
var Dialect sqlgen.Dialect = dialect{}

type dialect struct{}

func (dialect) Name() string { return "postgres" }

// QuoteIdent quotes each dot-separated part so "logs.elb" targets schema logs.
func (dialect) QuoteIdent(id string) string {
	parts := strings.Split(id, ".")
	for i, p := range parts {
		parts[i] = sqlgen.QuoteDouble(p)
	}
	return strings.Join(parts, ".")
}

func (dialect) ColumnType(t schema.SQLType) string {
	switch t.Kind {
	case schema.KindString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case schema.KindTimestamp:
		return "TIMESTAMP"
	case schema.KindFloat:
		return "DOUBLE PRECISION"
	case schema.KindSmallInt:
		return "SMALLINT"
	case schema.KindUnsignedBigInt:
		// No unsigned types; NUMERIC(20) holds the full uint64 range.
		return "NUMERIC(20)"
	default:
		return t.String()
	}
}

func (dialect) KeyColumn() string { return schema.KeyColumn + " BIGSERIAL PRIMARY KEY" }

func (dialect) EscapeString(s string) string {
	// Postgres text cannot hold NUL.
	return sqlgen.EscapeQuotes(strings.ReplaceAll(s, "\x00", ""))
}

func (dialect) StringLiteral(escaped string) string { return sqlgen.SingleQuoted(escaped) }

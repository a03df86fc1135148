package mssql

import (
	"fmt"
	"strings"

	"elbimport/internal/schema"
	"elbimport/internal/sqlgen"
)

// Dialect renders statements for SQL Server 2016 and later (DROP TABLE IF
// EXISTS).
var Dialect sqlgen.Dialect = dialect{}

type dialect struct{}

// maxNVarChar is the largest sized NVARCHAR; longer columns use NVARCHAR(MAX).
const maxNVarChar = 4000

func (dialect) Name() string { return "mssql" }

func (dialect) QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func (dialect) ColumnType(t schema.SQLType) string {
	switch t.Kind {
	case schema.KindString:
		if t.Length > maxNVarChar {
			return "NVARCHAR(MAX)"
		}
		return fmt.Sprintf("NVARCHAR(%d)", t.Length)
	case schema.KindTimestamp:
		return "DATETIME2(0)"
	case schema.KindFloat:
		return "FLOAT"
	case schema.KindSmallInt:
		return "SMALLINT"
	case schema.KindUnsignedBigInt:
		return "DECIMAL(20,0)"
	default:
		return t.String()
	}
}

func (dialect) KeyColumn() string {
	return schema.KeyColumn + " BIGINT IDENTITY(1,1) NOT NULL PRIMARY KEY"
}

func (dialect) EscapeString(s string) string { return sqlgen.EscapeQuotes(s) }

// StringLiteral uses N'...' so the literal is Unicode rather than the
// database code page.
func (dialect) StringLiteral(escaped string) string { return "N'" + escaped + "'" }

package sqlgen

import (
	"fmt"
	"strings"

	"elbimport/internal/record"
	"elbimport/internal/schema"
)

// CreateTable renders the DDL for model. Columns follow model order and the
// synthetic key column always comes last.
func CreateTable(d Dialect, table string, model *schema.FieldModel) string {
	parts := make([]string, 0, model.Len()+1)
	for i := 0; i < model.Len(); i++ {
		f := model.Field(i)
		parts = append(parts, f.Name+" "+d.ColumnType(f.Type))
	}
	parts = append(parts, d.KeyColumn())

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", d.QuoteIdent(table), strings.Join(parts, ",\n  "))
}

// DropTable renders DROP TABLE IF EXISTS.
func DropTable(d Dialect, table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.QuoteIdent(table))
}

// Insert renders one INSERT for rec. Quoted values are emitted as-is between
// single quotes, so rec must already be escaped (see EscapeRecord). Numeric
// null markers render as NULL.
//
// The record's columns must match the model's column list exactly.
func Insert(d Dialect, table string, rec record.LogRecord, model *schema.FieldModel) (string, error) {
	cols := rec.Columns()
	vals := rec.Values()
	if len(cols) != model.Len() {
		return "", fmt.Errorf("sqlgen: record has %d columns, model has %d", len(cols), model.Len())
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.QuoteIdent(table))
	b.WriteString(" (")
	for i, c := range cols {
		if f := model.Field(i); f.Name != c {
			return "", fmt.Errorf("sqlgen: record column %d is %q, model expects %q", i, c, f.Name)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
	}
	b.WriteString(") VALUES (")
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(&b, d, model.Field(i).Type, v)
	}
	b.WriteString(");")
	return b.String(), nil
}

func writeValue(b *strings.Builder, d Dialect, t schema.SQLType, v string) {
	switch {
	case t.Quoted():
		b.WriteString(d.StringLiteral(v))
	case record.IsNull(v):
		b.WriteString("NULL")
	default:
		b.WriteString(v)
	}
}

// EscapeRecord escapes every quoted field of rec for d. Numeric fields are
// left alone; the decoder has already proven them numeric.
func EscapeRecord(d Dialect, rec record.LogRecord, model *schema.FieldModel) record.LogRecord {
	return rec.Map(model, func(f schema.FieldSpec, v string) string {
		if !f.Type.Quoted() {
			return v
		}
		return d.EscapeString(v)
	})
}

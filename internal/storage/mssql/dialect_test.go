package mssql

import (
	"strings"
	"testing"

	"elbimport/internal/record"
	"elbimport/internal/schema"
	"elbimport/internal/sqlgen"
)

func TestColumnType_MSSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   schema.SQLType
		want string
	}{
		{schema.String(15), "NVARCHAR(15)"},
		{schema.String(8000), "NVARCHAR(MAX)"},
		{schema.Timestamp(), "DATETIME2(0)"},
		{schema.Float(), "FLOAT"},
		{schema.SmallInt(), "SMALLINT"},
		{schema.UnsignedBigInt(), "DECIMAL(20,0)"},
	}
	for _, tt := range tests {
		if got := Dialect.ColumnType(tt.in); got != tt.want {
			t.Fatalf("ColumnType(%s)=%q want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateTable_MSSQL(t *testing.T) {
	t.Parallel()

	ddl := sqlgen.CreateTable(Dialect, "elb]logs", schema.ELB())
	if !strings.HasPrefix(ddl, "CREATE TABLE [elb]]logs] (\n") {
		t.Fatalf("bad prefix:\n%s", ddl)
	}
	if !strings.HasSuffix(ddl, "  id BIGINT IDENTITY(1,1) NOT NULL PRIMARY KEY\n);") {
		t.Fatalf("bad key column:\n%s", ddl)
	}
	if !strings.Contains(ddl, "  user_agent NVARCHAR(2048),\n") {
		t.Fatalf("user_agent type:\n%s", ddl)
	}
}

func TestEscapeString_MSSQL(t *testing.T) {
	t.Parallel()

	if got := Dialect.EscapeString(`O'Brien \n`); got != `O''Brien \n` {
		t.Fatalf("EscapeString=%q", got)
	}
}

func TestInsert_MSSQLUsesUnicodeLiterals(t *testing.T) {
	t.Parallel()

	row := []string{
		"2015-05-13T23:39:43Z", "my-elb", "10.0.0.1:8080", "172.16.0.5:80",
		"0.1", "0.2", "0.3", "200", "200", "0", "29",
		"GET /caf\u00e9 HTTP/1.1", "Mozill\u00e0 \u2026 \ufffd O'Neil", "-", "-",
	}
	m := schema.ELB()
	rec, err := record.Decode(record.RawRow{Line: 1, Tokens: row}, m)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	stmt, err := sqlgen.Insert(Dialect, "t", sqlgen.EscapeRecord(Dialect, rec, m), m)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	for _, want := range []string{
		"N'Mozill\u00e0 \u2026 \ufffd O''Neil'",
		"N'/caf\u00e9 HTTP/1.1'",
		"N'2015-05-13 23:39:43'",
		", 0.1, 0.2, 0.3, 200, 200, 0, 29, ",
	} {
		if !strings.Contains(stmt, want) {
			t.Fatalf("statement missing %q:\n%s", want, stmt)
		}
	}
	if strings.Contains(stmt, ", '") || strings.Contains(stmt, "('") {
		t.Fatalf("plain varchar literal in statement:\n%s", stmt)
	}
}

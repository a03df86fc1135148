package sqlgen

import (
	"strings"
	"testing"

	"elbimport/internal/record"
	"elbimport/internal/schema"
)

func sampleRecord(t *testing.T, over map[string]string) record.LogRecord {
	t.Helper()

	tokens := map[string]string{
		"time":                    "2015-05-13T23:39:43.945958Z",
		"elb_name":                "my-elb",
		"request_ip_port":         "10.0.0.1:8080",
		"backend_ip_port":         "172.16.0.5:80",
		"request_processing_time": "0.000073",
		"backend_processing_time": "0.001048",
		"client_response_time":    "0.000057",
		"elb_response_code":       "200",
		"backend_response_code":   "200",
		"bytes_received":          "512",
		"bytes_sent":              "29",
		"method_url":              "GET /index.html",
		"user_agent":              "curl/7.38.0",
		"cipher":                  "-",
		"protocol":                "-",
	}
	for k, v := range over {
		tokens[k] = v
	}
	row := make([]string, len(schema.ELBHeader))
	for i, h := range schema.ELBHeader {
		row[i] = tokens[h]
	}

	rec, err := record.Decode(record.RawRow{Tokens: row}, schema.ELB())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return rec
}

// columnList extracts the text between the first "(" and the matching ")".
func columnList(stmt string) string {
	start := strings.Index(stmt, "(")
	end := strings.Index(stmt, ")")
	return stmt[start+1 : end]
}

func TestCreateTable_MySQL(t *testing.T) {
	t.Parallel()

	model := schema.MustFieldModel(
		schema.FieldSpec{Name: "time", Type: schema.Timestamp()},
		schema.FieldSpec{Name: "elb_name", Type: schema.String(255)},
		schema.FieldSpec{Name: "bytes_sent", Type: schema.UnsignedBigInt()},
	)

	got := CreateTable(MySQL, "elb_logs", model)
	want := "CREATE TABLE `elb_logs` (\n" +
		"  time TIMESTAMP,\n" +
		"  elb_name VARCHAR(255),\n" +
		"  bytes_sent BIGINT UNSIGNED,\n" +
		"  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT, PRIMARY KEY (id)\n" +
		");"
	if got != want {
		t.Fatalf("CreateTable:\n got=%q\nwant=%q", got, want)
	}
}

func TestCreateTable_ColumnOrderFollowsModel(t *testing.T) {
	t.Parallel()

	m := schema.ELB()
	ddl := CreateTable(MySQL, "t", m)

	lines := strings.Split(ddl, "\n")
	// First line is "CREATE TABLE ... (", last is ");", second to last is the key.
	body := lines[1 : len(lines)-1]
	if len(body) != m.Len()+1 {
		t.Fatalf("got %d column lines want %d", len(body), m.Len()+1)
	}
	for i, name := range m.ColumnNames() {
		if !strings.HasPrefix(strings.TrimSpace(body[i]), name+" ") {
			t.Fatalf("line %d=%q want column %q", i, body[i], name)
		}
	}
	if last := strings.TrimSpace(body[len(body)-1]); last != MySQL.KeyColumn() {
		t.Fatalf("last column=%q want key column", last)
	}
}

func TestDropTable_QuotesIdentifier(t *testing.T) {
	t.Parallel()

	if got := DropTable(MySQL, "we`ird"); got != "DROP TABLE IF EXISTS `we``ird`;" {
		t.Fatalf("DropTable=%q", got)
	}
}

func TestInsert_QuotingFollowsType(t *testing.T) {
	t.Parallel()

	m := schema.ELB()
	stmt, err := Insert(MySQL, "elb_logs", sampleRecord(t, nil), m)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	wantPrefix := "INSERT INTO `elb_logs` (" + strings.Join(m.ColumnNames(), ", ") + ") VALUES ("
	if !strings.HasPrefix(stmt, wantPrefix) {
		t.Fatalf("prefix mismatch:\n got=%q\nwant=%q", stmt, wantPrefix)
	}
	if !strings.HasSuffix(stmt, ");") {
		t.Fatalf("missing terminator: %q", stmt)
	}

	values := strings.TrimSuffix(strings.TrimPrefix(stmt, wantPrefix), ");")
	want := "'2015-05-13 23:39:43', 'my-elb', '10.0.0.1', '8080', '172.16.0.5', '80', " +
		"0.000073, 0.001048, 0.000057, 200, 200, 512, 29, " +
		"'GET', '/index.html', 'curl/7.38.0', '-', '-'"
	if values != want {
		t.Fatalf("values:\n got=%q\nwant=%q", values, want)
	}
}

func TestInsert_NullForDashNumerics(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(t, map[string]string{"backend_response_code": "-"})
	stmt, err := Insert(MySQL, "t", rec, schema.ELB())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !strings.Contains(stmt, "200, NULL, 512") {
		t.Fatalf("expected NULL backend_response_code: %q", stmt)
	}
}

func TestInsert_ColumnCountMatchesDDL(t *testing.T) {
	t.Parallel()

	m := schema.ELB()
	ddl := CreateTable(MySQL, "t", m)
	stmt, err := Insert(MySQL, "t", sampleRecord(t, nil), m)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Every model column line ends in ",\n"; the key line does not.
	ddlCols := strings.Count(ddl, ",\n")
	insertCols := len(strings.Split(columnList(stmt), ", "))
	if ddlCols != insertCols {
		t.Fatalf("DDL declares %d model columns, INSERT lists %d", ddlCols, insertCols)
	}
}

func TestInsert_RejectsModelMismatch(t *testing.T) {
	t.Parallel()

	other := schema.MustFieldModel(schema.FieldSpec{Name: "elb_name", Type: schema.String(10)})
	if _, err := Insert(MySQL, "t", sampleRecord(t, nil), other); err == nil {
		t.Fatalf("expected count mismatch error")
	}

	fields := schema.ELB().Fields()
	fields[0], fields[1] = fields[1], fields[0]
	swapped := schema.MustFieldModel(fields...)
	if _, err := Insert(MySQL, "t", sampleRecord(t, nil), swapped); err == nil {
		t.Fatalf("expected order mismatch error")
	}
}

func TestEscapeRecord_MySQL(t *testing.T) {
	t.Parallel()

	m := schema.ELB()
	rec := sampleRecord(t, map[string]string{"user_agent": `Mozilla "x" it's \ done`})
	stmt, err := Insert(MySQL, "t", EscapeRecord(MySQL, rec, m), m)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	want := `'Mozilla \"x\" it\'s \\ done'`
	if !strings.Contains(stmt, want) {
		t.Fatalf("escaped user_agent %s not found in %q", want, stmt)
	}
}

func TestEscapeQuotes(t *testing.T) {
	t.Parallel()

	if got := EscapeQuotes(`it's`); got != `it''s` {
		t.Fatalf("EscapeQuotes=%q", got)
	}
	if got := QuoteDouble(`a"b`); got != `"a""b"` {
		t.Fatalf("QuoteDouble=%q", got)
	}
}

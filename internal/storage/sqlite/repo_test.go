package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"elbimport/internal/record"
	"elbimport/internal/schema"
	"elbimport/internal/sqlgen"
	"elbimport/internal/storage"
)

func openTemp(t *testing.T) *Repo {
	t.Helper()

	repo, err := storage.New(context.Background(), storage.Config{
		Kind: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "elb.db"),
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(repo.Close)
	return repo.(*Repo)
}

func TestRepo_CreateInsertDrop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openTemp(t)
	m := schema.ELB()

	exists, err := r.TableExists(ctx, "elb_logs")
	if err != nil || exists {
		t.Fatalf("TableExists before create = %v, %v", exists, err)
	}

	if err := r.Exec(ctx, sqlgen.CreateTable(r.Dialect(), "elb_logs", m)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if exists, err = r.TableExists(ctx, "elb_logs"); err != nil || !exists {
		t.Fatalf("TableExists after create = %v, %v", exists, err)
	}

	tokens := []string{
		"2015-05-13T23:39:43.945958Z", "my-elb", "10.0.0.1:8080", "172.16.0.5:80",
		"0.000073", "0.001048", "0.000057", "200", "-", "512", "29",
		"GET /it's", `agent "x"`, "-", "-",
	}
	rec, err := record.Decode(record.RawRow{Line: 1, Tokens: tokens}, m)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	stmt, err := sqlgen.Insert(r.Dialect(), "elb_logs", sqlgen.EscapeRecord(r.Dialect(), rec, m), m)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := r.Exec(ctx, stmt); err != nil {
			t.Fatalf("exec insert: %v", err)
		}
	}

	var (
		id      int64
		url, ua string
		backend *int64
	)
	q := `SELECT id, request_url, user_agent, backend_response_code FROM elb_logs ORDER BY id DESC LIMIT 1`
	if err := r.DB().QueryRowContext(ctx, q).Scan(&id, &url, &ua, &backend); err != nil {
		t.Fatalf("select: %v", err)
	}
	if id != 2 {
		t.Fatalf("id=%d want 2 (auto increment)", id)
	}
	if url != "/it's" || ua != `agent "x"` {
		t.Fatalf("url=%q ua=%q", url, ua)
	}
	if backend != nil {
		t.Fatalf("backend_response_code=%d want NULL", *backend)
	}

	if err := r.Exec(ctx, sqlgen.DropTable(r.Dialect(), "elb_logs")); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if exists, _ = r.TableExists(ctx, "elb_logs"); exists {
		t.Fatalf("table still exists after drop")
	}
}

func TestRepo_ExecErrorCarriesStatement(t *testing.T) {
	t.Parallel()

	r := openTemp(t)
	err := r.Exec(context.Background(), "INSERT INTO missing (a) VALUES (1);")

	var se *storage.SQLExecutionError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v want *storage.SQLExecutionError", err)
	}
	if se.Statement != "INSERT INTO missing (a) VALUES (1);" {
		t.Fatalf("Statement=%q", se.Statement)
	}
}

func TestNew_RequiresDSN(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), storage.Config{Kind: "sqlite"}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

package sqlstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"todo-api/internal/model"
	"todo-api/internal/store/storetest"
	"todo-api/internal/todo"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "todos.db") + "?_pragma=busy_timeout(5000)"
	st, err := Open(context.Background(), SQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLite_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) todo.Store { return newSQLiteStore(t) })
}

func TestSQLite_EnsureSchemaIsIdempotent(t *testing.T) {
	st := newSQLiteStore(t)
	if err := st.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestSQLite_RejectsBlankTitle(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	sess, err := st.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer sess.Close()

	if _, err := sess.Insert(ctx, model.TodoItem{Title: "   "}); err == nil {
		t.Fatalf("expected the table constraint to reject a blank title")
	}
}

func TestSQLite_PersistTwiceFails(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	sess, err := st.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := sess.PersistChanges(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := sess.PersistChanges(ctx); err == nil {
		t.Fatalf("expected error on second persist")
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close after persist: %v", err)
	}
}

func TestDialectByName(t *testing.T) {
	for _, name := range []string{"postgres", "sqlite"} {
		d, ok := DialectByName(name)
		if !ok || d.Name != name {
			t.Fatalf("DialectByName(%q) = %+v, %v", name, d, ok)
		}
	}
	if _, ok := DialectByName("oracle"); ok {
		t.Fatalf("unexpected dialect for oracle")
	}
}

func TestPostgres_Conformance(t *testing.T) {
	dbURL := postgresURL(t)

	storetest.Run(t, func(t *testing.T) todo.Store {
		st, err := Open(context.Background(), Postgres, dbURL)
		if err != nil {
			t.Fatalf("open postgres: %v", err)
		}
		t.Cleanup(func() { st.Close() })
		truncate(t, st.db)
		return st
	})
}

func truncate(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec(`TRUNCATE TABLE todo_items RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func postgresURL(t *testing.T) string {
	t.Helper()
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		t.Skip("DB_URL not set (integration test)")
	}
	return dbURL
}

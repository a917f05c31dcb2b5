package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"todo-api/internal/model"
	"todo-api/internal/store/storetest"
	"todo-api/internal/todo"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "data", "todos.json"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return st
}

func TestStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) todo.Store { return newStore(t) })
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sess, err := first.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	a, _ := sess.Insert(ctx, model.TodoItem{Title: "a"})
	b, _ := sess.Insert(ctx, model.TodoItem{Title: "b"})
	_ = sess.Remove(ctx, b)
	if err := sess.PersistChanges(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	sess.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	sess, err = second.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer sess.Close()

	got, err := sess.FindByID(ctx, a.ID)
	if err != nil || got.Title != "a" {
		t.Fatalf("item lost after reopen: %+v, %v", got, err)
	}
	c, _ := sess.Insert(ctx, model.TodoItem{Title: "c"})
	if c.ID <= b.ID {
		t.Fatalf("deleted id %d reused as %d after reopen", b.ID, c.ID)
	}
}

func TestStore_FileLayout(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	sess, _ := st.Begin(ctx)
	_, _ = sess.Insert(ctx, model.TodoItem{Title: "only"})
	if err := sess.PersistChanges(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	sess.Close()

	raw, err := os.ReadFile(st.path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc struct {
		NextID int64            `json:"next_id"`
		Items  []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v; raw=%s", err, raw)
	}
	if doc.NextID != 2 || len(doc.Items) != 1 {
		t.Fatalf("unexpected document: %s", raw)
	}
	if doc.Items[0]["isCompleted"] != false {
		t.Fatalf("expected isCompleted=false, got %v", doc.Items[0]["isCompleted"])
	}
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	st := newStore(t)
	sess, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	// lock must be free again
	if err := st.PingContext(context.Background()); err != nil {
		t.Fatalf("ping after close: %v", err)
	}
}

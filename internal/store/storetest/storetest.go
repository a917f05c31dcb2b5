// Package storetest holds the behaviour every todo.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"todo-api/internal/model"
	"todo-api/internal/todo"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) todo.Store

var created = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

var equateTime = cmpopts.EquateApproxTime(time.Second)

func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("EmptyList", func(t *testing.T) { testEmptyList(t, newStore(t)) })
	t.Run("InsertAssignsIncreasingIDs", func(t *testing.T) { testInsertAssignsIDs(t, newStore(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("UncommittedIsDiscarded", func(t *testing.T) { testUncommittedDiscarded(t, newStore(t)) })
	t.Run("FindMissing", func(t *testing.T) { testFindMissing(t, newStore(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("RemoveDoesNotReuseID", func(t *testing.T) { testRemove(t, newStore(t)) })
	t.Run("UpdateAfterRemove", func(t *testing.T) { testUpdateAfterRemove(t, newStore(t)) })
}

func begin(t *testing.T, st todo.Store) todo.Session {
	t.Helper()
	sess, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return sess
}

func insert(t *testing.T, st todo.Store, title string) model.TodoItem {
	t.Helper()
	ctx := context.Background()
	sess := begin(t, st)
	defer sess.Close()

	item, err := sess.Insert(ctx, model.TodoItem{Title: title, Description: title + " desc", CreatedAt: created})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := sess.PersistChanges(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	return item
}

func list(t *testing.T, st todo.Store) []model.TodoItem {
	t.Helper()
	sess := begin(t, st)
	defer sess.Close()

	items, err := sess.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return items
}

func get(t *testing.T, st todo.Store, id int64) (model.TodoItem, error) {
	t.Helper()
	sess := begin(t, st)
	defer sess.Close()
	return sess.FindByID(context.Background(), id)
}

func testEmptyList(t *testing.T, st todo.Store) {
	if items := list(t, st); len(items) != 0 {
		t.Fatalf("expected empty store, got %d items", len(items))
	}
}

func testInsertAssignsIDs(t *testing.T, st todo.Store) {
	a := insert(t, st, "first")
	b := insert(t, st, "second")
	c := insert(t, st, "third")

	if a.ID <= 0 || b.ID <= a.ID || c.ID <= b.ID {
		t.Fatalf("ids not increasing: %d %d %d", a.ID, b.ID, c.ID)
	}

	items := list(t, st)
	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	if diff := cmp.Diff([]string{"first", "second", "third"}, titles); diff != "" {
		t.Fatalf("insertion order (-want +got):\n%s", diff)
	}
}

func testRoundTrip(t *testing.T, st todo.Store) {
	want := insert(t, st, "Buy milk")

	got, err := get(t, st, want.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if diff := cmp.Diff(want, got, equateTime); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func testUncommittedDiscarded(t *testing.T, st todo.Store) {
	ctx := context.Background()
	sess := begin(t, st)
	if _, err := sess.Insert(ctx, model.TodoItem{Title: "never", CreatedAt: created}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if items := list(t, st); len(items) != 0 {
		t.Fatalf("uncommitted insert is visible: %+v", items)
	}

	kept := insert(t, st, "kept")
	items := list(t, st)
	if len(items) != 1 || items[0].ID != kept.ID {
		t.Fatalf("expected only the committed item, got %+v", items)
	}
}

func testFindMissing(t *testing.T, st todo.Store) {
	_, err := get(t, st, 999)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testUpdate(t *testing.T, st todo.Store) {
	ctx := context.Background()
	item := insert(t, st, "before")

	item.Title = "after"
	item.Description = "changed"
	item.IsCompleted = true

	sess := begin(t, st)
	if err := sess.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := sess.PersistChanges(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	sess.Close()

	got, err := get(t, st, item.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if diff := cmp.Diff(item, got, equateTime); diff != "" {
		t.Fatalf("updated item (-want +got):\n%s", diff)
	}
}

func testRemove(t *testing.T, st todo.Store) {
	ctx := context.Background()
	a := insert(t, st, "a")
	b := insert(t, st, "b")

	sess := begin(t, st)
	if err := sess.Remove(ctx, b); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := sess.PersistChanges(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	sess.Close()

	if _, err := get(t, st, b.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected removed item to be gone, got %v", err)
	}
	if _, err := get(t, st, a.ID); err != nil {
		t.Fatalf("other item affected: %v", err)
	}

	c := insert(t, st, "c")
	if c.ID <= b.ID {
		t.Fatalf("id reused or decreased after remove: got %d, removed %d", c.ID, b.ID)
	}
}

func testUpdateAfterRemove(t *testing.T, st todo.Store) {
	ctx := context.Background()
	item := insert(t, st, "racy")

	sess := begin(t, st)
	if err := sess.Remove(ctx, item); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := sess.PersistChanges(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	sess.Close()

	sess = begin(t, st)
	defer sess.Close()
	item.IsCompleted = true
	err := sess.Update(ctx, item)
	if err == nil {
		err = sess.PersistChanges(ctx)
	}
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating a removed item, got %v", err)
	}
}

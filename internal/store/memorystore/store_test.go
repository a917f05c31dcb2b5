package memorystore

import (
	"context"
	"sync"
	"testing"

	"todo-api/internal/model"
	"todo-api/internal/store/storetest"
	"todo-api/internal/todo"
)

func TestTodoStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) todo.Store { return NewTodoStore() })
}

func TestTodoStore_ConcurrentInsertsGetDistinctIDs(t *testing.T) {
	st := NewTodoStore()
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := st.Begin(ctx)
			if err != nil {
				t.Errorf("begin: %v", err)
				return
			}
			defer sess.Close()
			item, err := sess.Insert(ctx, model.TodoItem{Title: "x"})
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			if err := sess.PersistChanges(ctx); err != nil {
				t.Errorf("persist: %v", err)
				return
			}
			ids <- item.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d ids, got %d", n, len(seen))
	}
}

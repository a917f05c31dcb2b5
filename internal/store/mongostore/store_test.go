package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"todo-api/internal/model"
	"todo-api/internal/store/storetest"
	"todo-api/internal/todo"
)

func TestMongo_Conformance(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set (integration test)")
	}

	n := 0
	storetest.Run(t, func(t *testing.T) todo.Store {
		n++
		coll := fmt.Sprintf("todo_items_test_%d_%d", time.Now().UnixNano(), n)
		st, err := Connect(context.Background(), uri, "todo_test", coll)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		t.Cleanup(func() {
			ctx := context.Background()
			_ = st.items.Drop(ctx)
			_, _ = st.counters.DeleteOne(ctx, bson.M{"_id": coll})
			_ = st.Disconnect(ctx)
		})
		return st
	})
}

func TestDocMapping(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	in := model.TodoItem{ID: 7, Title: "t", Description: "d", IsCompleted: true, CreatedAt: at}

	out := toDoc(in).toModel()
	if out.ID != in.ID || out.Title != in.Title || out.Description != in.Description || !out.IsCompleted {
		t.Fatalf("mapping lost fields: %+v", out)
	}
	if !out.CreatedAt.Equal(at) || out.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at should be the same instant in UTC, got %v", out.CreatedAt)
	}
}

func TestSession_CloseDropsBufferedWrites(t *testing.T) {
	s := &session{store: &Store{}}
	_ = s.Update(context.Background(), model.TodoItem{ID: 1})
	_ = s.Remove(context.Background(), model.TodoItem{ID: 2})
	if len(s.writes) != 2 {
		t.Fatalf("expected 2 buffered writes, got %d", len(s.writes))
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(s.writes) != 0 {
		t.Fatalf("expected writes to be dropped")
	}
}

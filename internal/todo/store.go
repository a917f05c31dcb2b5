package todo

import (
	"context"

	"todo-api/internal/model"
)

// Store hands out sessions. Each service call uses exactly one.
type Store interface {
	Begin(ctx context.Context) (Session, error)
}

// Session is a unit of work against a Store. Reads observe committed state.
// Writes become durable only once PersistChanges returns nil; Close discards
// anything not yet persisted and must be safe to call after PersistChanges.
type Session interface {
	ListAll(ctx context.Context) ([]model.TodoItem, error)
	// FindByID returns model.ErrNotFound when no item has the id.
	FindByID(ctx context.Context, id int64) (model.TodoItem, error)
	// Insert assigns the id. Ids of persisted items are never handed out
	// again, even after the item is removed.
	Insert(ctx context.Context, item model.TodoItem) (model.TodoItem, error)
	Update(ctx context.Context, item model.TodoItem) error
	Remove(ctx context.Context, item model.TodoItem) error
	PersistChanges(ctx context.Context) error
	Close() error
}

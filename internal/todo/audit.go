package todo

import (
	"context"
	"time"

	"todo-api/internal/model"
)

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpToggle = "toggle"
)

// Event describes one committed mutation.
type Event struct {
	Op     string          `json:"op"`
	TodoID int64           `json:"todo_id"`
	At     time.Time       `json:"at"`
	Before *model.TodoItem `json:"before,omitempty"`
	After  *model.TodoItem `json:"after,omitempty"`
}

type Auditor interface {
	Record(ctx context.Context, e Event) error
}

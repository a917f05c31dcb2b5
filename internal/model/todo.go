package model

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type TodoItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

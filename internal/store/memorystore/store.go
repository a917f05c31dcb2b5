package memorystore

import (
	"context"
	"sync"

	"todo-api/internal/model"
	"todo-api/internal/todo"
)

type TodoStore struct {
	mu     sync.RWMutex
	items  map[int64]model.TodoItem
	order  []int64
	nextID int64
}

func NewTodoStore() *TodoStore {
	return &TodoStore{
		items:  make(map[int64]model.TodoItem),
		nextID: 1,
	}
}

func (s *TodoStore) Begin(ctx context.Context) (todo.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &session{store: s}, nil
}

func (s *TodoStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

func (s *TodoStore) reserveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opRemove
)

type pendingOp struct {
	kind opKind
	item model.TodoItem
}

type session struct {
	store   *TodoStore
	pending []pendingOp
}

func (s *session) ListAll(ctx context.Context) ([]model.TodoItem, error) {
	st := s.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]model.TodoItem, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, st.items[id])
	}
	return out, nil
}

func (s *session) FindByID(ctx context.Context, id int64) (model.TodoItem, error) {
	st := s.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	t, ok := st.items[id]
	if !ok {
		return model.TodoItem{}, model.ErrNotFound
	}
	return t, nil
}

func (s *session) Insert(ctx context.Context, item model.TodoItem) (model.TodoItem, error) {
	item.ID = s.store.reserveID()
	s.pending = append(s.pending, pendingOp{kind: opInsert, item: item})
	return item, nil
}

func (s *session) Update(ctx context.Context, item model.TodoItem) error {
	s.pending = append(s.pending, pendingOp{kind: opUpdate, item: item})
	return nil
}

func (s *session) Remove(ctx context.Context, item model.TodoItem) error {
	s.pending = append(s.pending, pendingOp{kind: opRemove, item: item})
	return nil
}

// PersistChanges applies all pending operations or none of them.
func (s *session) PersistChanges(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	exists := func(id int64) bool {
		_, ok := st.items[id]
		return ok
	}
	for _, op := range s.pending {
		if op.kind != opInsert && !exists(op.item.ID) {
			return model.ErrNotFound
		}
	}

	for _, op := range s.pending {
		switch op.kind {
		case opInsert:
			st.items[op.item.ID] = op.item
			st.order = append(st.order, op.item.ID)
		case opUpdate:
			st.items[op.item.ID] = op.item
		case opRemove:
			delete(st.items, op.item.ID)
			st.order = removeID(st.order, op.item.ID)
		}
	}
	s.pending = nil
	return nil
}

func (s *session) Close() error {
	s.pending = nil
	return nil
}

func removeID(order []int64, id int64) []int64 {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

package todo

import (
	"context"
	"errors"
	"time"

	"todo-api/internal/model"
	"todo-api/internal/observability/jsonlog"
)

type Service struct {
	store   Store
	auditor Auditor
	logger  *jsonlog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func WithLogger(l *jsonlog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: jsonlog.Discard(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]model.TodoItem, error) {
	sess, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close(sess)

	items, err := sess.ListAll(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	if items == nil {
		items = []model.TodoItem{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.TodoItem, error) {
	sess, err := s.begin(ctx)
	if err != nil {
		return model.TodoItem{}, err
	}
	defer s.close(sess)

	return find(ctx, sess, id)
}

func (s *Service) Create(ctx context.Context, in CreateIntent) (model.TodoItem, error) {
	valid, err := ValidateCreate(in)
	if err != nil {
		return model.TodoItem{}, err
	}

	// Once validated, a write runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	sess, err := s.begin(ctx)
	if err != nil {
		return model.TodoItem{}, err
	}
	defer s.close(sess)

	created, err := sess.Insert(ctx, model.TodoItem{
		Title:       valid.Title,
		Description: valid.Description,
		IsCompleted: false,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return model.TodoItem{}, &StorageError{Op: "insert", Err: err}
	}
	if err := sess.PersistChanges(ctx); err != nil {
		return model.TodoItem{}, &StorageError{Op: "persist", Err: err}
	}

	s.record(ctx, Event{Op: OpCreate, TodoID: created.ID, After: &created})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateIntent) (model.TodoItem, error) {
	valid, err := ValidateUpdate(in)
	if err != nil {
		return model.TodoItem{}, err
	}

	ctx = context.WithoutCancel(ctx)
	sess, err := s.begin(ctx)
	if err != nil {
		return model.TodoItem{}, err
	}
	defer s.close(sess)

	current, err := find(ctx, sess, id)
	if err != nil {
		return model.TodoItem{}, err
	}
	before := current

	if valid.Title != nil {
		current.Title = *valid.Title
	}
	if valid.Description != nil {
		current.Description = *valid.Description
	}
	if valid.IsCompleted != nil {
		current.IsCompleted = *valid.IsCompleted
	}

	if err := sess.Update(ctx, current); err != nil {
		return model.TodoItem{}, storeErr("update", id, err)
	}
	if err := sess.PersistChanges(ctx); err != nil {
		return model.TodoItem{}, storeErr("persist", id, err)
	}

	s.record(ctx, Event{Op: OpUpdate, TodoID: id, Before: &before, After: &current})
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx = context.WithoutCancel(ctx)
	sess, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.close(sess)

	current, err := find(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := sess.Remove(ctx, current); err != nil {
		return storeErr("remove", id, err)
	}
	if err := sess.PersistChanges(ctx); err != nil {
		return storeErr("persist", id, err)
	}

	s.record(ctx, Event{Op: OpDelete, TodoID: id, Before: &current})
	return nil
}

func (s *Service) Toggle(ctx context.Context, id int64) (model.TodoItem, error) {
	ctx = context.WithoutCancel(ctx)
	sess, err := s.begin(ctx)
	if err != nil {
		return model.TodoItem{}, err
	}
	defer s.close(sess)

	current, err := find(ctx, sess, id)
	if err != nil {
		return model.TodoItem{}, err
	}
	before := current
	current.IsCompleted = !current.IsCompleted

	if err := sess.Update(ctx, current); err != nil {
		return model.TodoItem{}, storeErr("update", id, err)
	}
	if err := sess.PersistChanges(ctx); err != nil {
		return model.TodoItem{}, storeErr("persist", id, err)
	}

	s.record(ctx, Event{Op: OpToggle, TodoID: id, Before: &before, After: &current})
	return current, nil
}

func (s *Service) begin(ctx context.Context) (Session, error) {
	sess, err := s.store.Begin(ctx)
	if err != nil {
		return nil, &StorageError{Op: "begin", Err: err}
	}
	return sess, nil
}

func (s *Service) close(sess Session) {
	if err := sess.Close(); err != nil {
		s.logger.Warn("session_close_failed", map[string]any{"err": err})
	}
}

// record is best effort: the mutation is already durable.
func (s *Service) record(ctx context.Context, e Event) {
	if s.auditor == nil {
		return
	}
	e.At = s.now()
	if err := s.auditor.Record(ctx, e); err != nil {
		s.logger.Error("audit_record_failed", map[string]any{
			"op":      e.Op,
			"todo_id": e.TodoID,
			"err":     err,
		})
	}
}

func find(ctx context.Context, sess Session, id int64) (model.TodoItem, error) {
	item, err := sess.FindByID(ctx, id)
	if err != nil {
		return model.TodoItem{}, storeErr("find", id, err)
	}
	return item, nil
}

func storeErr(op string, id int64, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return &StorageError{Op: op, Err: err}
}

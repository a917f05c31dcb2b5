// Package filestore keeps todo items in a single JSON file.
//
// A session holds an exclusive lock on the file from Begin until Close, both
// within the process and across processes sharing the file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"todo-api/internal/model"
	"todo-api/internal/todo"
)

const lockRetryInterval = 50 * time.Millisecond

type document struct {
	NextID int64            `json:"next_id"`
	Items  []model.TodoItem `json:"items"`
}

type Store struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex

	// highest id handed out by this process, persisted or not
	reserved int64
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create dir: %w", err)
	}
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *Store) Begin(ctx context.Context) (todo.Session, error) {
	s.mu.Lock()
	locked, err := s.lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil || !locked {
		s.mu.Unlock()
		if err == nil {
			err = errors.New("could not acquire file lock")
		}
		return nil, fmt.Errorf("filestore: lock: %w", err)
	}

	doc, err := s.load()
	if err != nil {
		s.release()
		return nil, err
	}
	if doc.NextID <= s.reserved {
		doc.NextID = s.reserved + 1
	}
	return &session{store: s, doc: doc}, nil
}

// PingContext checks that the file can be locked and read.
func (s *Store) PingContext(ctx context.Context) error {
	sess, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	return sess.Close()
}

func (s *Store) release() {
	_ = s.lock.Unlock()
	s.mu.Unlock()
}

func (s *Store) load() (document, error) {
	doc := document{NextID: 1}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return document{}, fmt.Errorf("filestore: read: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("filestore: decode: %w", err)
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return doc, nil
}

func (s *Store) save(doc document) error {
	if doc.Items == nil {
		doc.Items = []model.TodoItem{}
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

type session struct {
	store  *Store
	doc    document
	dirty  bool
	closed bool
}

func (s *session) ListAll(ctx context.Context) ([]model.TodoItem, error) {
	out := make([]model.TodoItem, len(s.doc.Items))
	copy(out, s.doc.Items)
	return out, nil
}

func (s *session) FindByID(ctx context.Context, id int64) (model.TodoItem, error) {
	if i := s.index(id); i >= 0 {
		return s.doc.Items[i], nil
	}
	return model.TodoItem{}, model.ErrNotFound
}

func (s *session) Insert(ctx context.Context, item model.TodoItem) (model.TodoItem, error) {
	item.ID = s.doc.NextID
	s.doc.NextID++
	s.store.reserved = item.ID
	s.doc.Items = append(s.doc.Items, item)
	s.dirty = true
	return item, nil
}

func (s *session) Update(ctx context.Context, item model.TodoItem) error {
	i := s.index(item.ID)
	if i < 0 {
		return model.ErrNotFound
	}
	s.doc.Items[i] = item
	s.dirty = true
	return nil
}

func (s *session) Remove(ctx context.Context, item model.TodoItem) error {
	i := s.index(item.ID)
	if i < 0 {
		return model.ErrNotFound
	}
	s.doc.Items = append(s.doc.Items[:i], s.doc.Items[i+1:]...)
	s.dirty = true
	return nil
}

func (s *session) PersistChanges(ctx context.Context) error {
	if s.closed {
		return errors.New("filestore: session closed")
	}
	if !s.dirty {
		return nil
	}
	if err := s.store.save(s.doc); err != nil {
		return fmt.Errorf("filestore: write: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.store.release()
	return nil
}

func (s *session) index(id int64) int {
	for i, it := range s.doc.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

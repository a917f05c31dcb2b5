// Package sqlstore persists todo items through database/sql. Every session
// is one transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"todo-api/internal/model"
	"todo-api/internal/todo"
)

const table = "todo_items"

var columns = []string{"id", "title", "description", "is_completed", "created_at"}

type Store struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

func New(db *sql.DB, d Dialect) *Store {
	if d.MaxOpenConns > 0 {
		db.SetMaxOpenConns(d.MaxOpenConns)
	}
	return &Store{
		db:      db,
		dialect: d,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.Placeholder),
	}
}

// Open connects, pings and makes sure the table exists.
func Open(ctx context.Context, d Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	s := New(db, d)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s ping: %w", d.Name, err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Schema); err != nil {
		return fmt.Errorf("%s schema: %w", s.dialect.Name, err)
	}
	return nil
}

func (s *Store) PingContext(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Begin(ctx context.Context) (todo.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &session{tx: tx, sb: s.sb}, nil
}

type session struct {
	tx   *sql.Tx
	sb   sq.StatementBuilderType
	done bool
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (model.TodoItem, error) {
	var t model.TodoItem
	err := r.Scan(&t.ID, &t.Title, &t.Description, &t.IsCompleted, &t.CreatedAt)
	if err != nil {
		return model.TodoItem{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (s *session) ListAll(ctx context.Context) ([]model.TodoItem, error) {
	q, args, err := s.sb.Select(columns...).From(table).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.TodoItem{}
	for rows.Next() {
		t, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (s *session) FindByID(ctx context.Context, id int64) (model.TodoItem, error) {
	q, args, err := s.sb.Select(columns...).From(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.TodoItem{}, err
	}
	t, err := scanItem(s.tx.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TodoItem{}, model.ErrNotFound
		}
		return model.TodoItem{}, err
	}
	return t, nil
}

func (s *session) Insert(ctx context.Context, item model.TodoItem) (model.TodoItem, error) {
	q, args, err := s.sb.Insert(table).
		Columns("title", "description", "is_completed", "created_at").
		Values(item.Title, item.Description, item.IsCompleted, item.CreatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return model.TodoItem{}, err
	}
	if err := s.tx.QueryRowContext(ctx, q, args...).Scan(&item.ID); err != nil {
		return model.TodoItem{}, err
	}
	return item, nil
}

func (s *session) Update(ctx context.Context, item model.TodoItem) error {
	q, args, err := s.sb.Update(table).
		Set("title", item.Title).
		Set("description", item.Description).
		Set("is_completed", item.IsCompleted).
		Where(sq.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return s.execOne(ctx, q, args)
}

func (s *session) Remove(ctx context.Context, item model.TodoItem) error {
	q, args, err := s.sb.Delete(table).Where(sq.Eq{"id": item.ID}).ToSql()
	if err != nil {
		return err
	}
	return s.execOne(ctx, q, args)
}

// execOne runs a statement that must touch exactly one row.
func (s *session) execOne(ctx context.Context, q string, args []any) error {
	res, err := s.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *session) PersistChanges(ctx context.Context) error {
	if s.done {
		return errors.New("sqlstore: session already finished")
	}
	s.done = true
	return s.tx.Commit()
}

func (s *session) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

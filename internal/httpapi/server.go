package httpapi

import (
	"context"
	"net/http"
	"time"

	"todo-api/internal/model"
	"todo-api/internal/observability/jsonlog"
	"todo-api/internal/todo"
)

type TodoService interface {
	List(ctx context.Context) ([]model.TodoItem, error)
	Get(ctx context.Context, id int64) (model.TodoItem, error)
	Create(ctx context.Context, in todo.CreateIntent) (model.TodoItem, error)
	Update(ctx context.Context, id int64, in todo.UpdateIntent) (model.TodoItem, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) (model.TodoItem, error)
}

type Server struct {
	service TodoService
	logger  *jsonlog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

type Config struct {
	// RequestTimeout bounds the context handed to the service. Zero means 3s.
	RequestTimeout time.Duration
	Logger         *jsonlog.Logger
	// Ready is pinged by /readyz. Nil means always ready.
	Ready DBPinger
}

func NewServer(service TodoService, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = jsonlog.Discard()
	}
	if cfg.Ready == nil {
		cfg.Ready = alwaysReady{}
	}

	srv := &Server{
		service: service,
		logger:  cfg.Logger,
		mux:     http.NewServeMux(),
	}

	srv.mux.HandleFunc("GET /healthz", srv.handleHealth)
	srv.mux.HandleFunc("GET /readyz", ReadyzHandler(cfg.Ready, cfg.Logger))

	srv.mux.HandleFunc("GET /api/todos", srv.handleListTodos)
	srv.mux.HandleFunc("POST /api/todos", srv.handleCreateTodo)
	srv.mux.HandleFunc("GET /api/todos/{id}", srv.handleGetTodo)
	srv.mux.HandleFunc("PUT /api/todos/{id}", srv.handleUpdateTodo)
	srv.mux.HandleFunc("DELETE /api/todos/{id}", srv.handleDeleteTodo)
	srv.mux.HandleFunc("PATCH /api/todos/{id}/toggle", srv.handleToggleTodo)

	srv.handler = WithRequestID()(
		Logging(cfg.Logger)(
			Timeout(cfg.RequestTimeout)(srv.mux),
		),
	)
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type alwaysReady struct{}

func (alwaysReady) PingContext(ctx context.Context) error { return nil }

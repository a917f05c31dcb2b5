package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"todo-api/internal/todo"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.List(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(items),
		"items": items,
	})
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	item, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type createTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeBody(r, createSchema, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	in := todo.CreateIntent{Title: req.Title}
	if req.Description != nil {
		in.Description = *req.Description
	}
	created, err := s.service.Create(r.Context(), in)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/todos/%d", created.ID))
	writeJSON(w, http.StatusCreated, created)
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var req updateTodoRequest
	if err := decodeBody(r, updateSchema, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	updated, err := s.service.Update(r.Context(), id, todo.UpdateIntent{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	toggled, err := s.service.Toggle(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}

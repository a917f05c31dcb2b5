package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todo-api/internal/todo"
)

func TestDecodeBody_TooLarge(t *testing.T) {
	big := `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(big))

	var out createTodoRequest
	err := decodeBody(req, createSchema, &out)
	var re *requestError
	if !errors.As(err, &re) || re.msg != "payload too large" {
		t.Fatalf("expected payload too large, got %v", err)
	}
}

func TestDecodeBody_SchemaErrorsBecomeFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/todos/1",
		strings.NewReader(`{"title": 1, "isCompleted": "no"}`))

	var out updateTodoRequest
	err := decodeBody(req, updateSchema, &out)
	var ve *todo.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var fields []string
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}
	if len(fields) != 2 || fields[0] != "isCompleted" || fields[1] != "title" {
		t.Fatalf("fields=%v", fields)
	}
}

func TestDecodeBody_NullMeansAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/todos/1",
		strings.NewReader(`{"title": null, "description": "d", "isCompleted": null}`))

	var out updateTodoRequest
	if err := decodeBody(req, updateSchema, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Title != nil || out.IsCompleted != nil || out.Description == nil || *out.Description != "d" {
		t.Fatalf("unexpected decode: %+v", out)
	}
}

package todo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"todo-api/internal/model"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindOK},
		{"validation", &ValidationError{Fields: []FieldError{{Field: "title", Message: "title is required"}}}, KindValidation},
		{"wrapped validation", fmt.Errorf("handler: %w", &ValidationError{}), KindValidation},
		{"not found", &NotFoundError{ID: 3}, KindNotFound},
		{"bare not found", model.ErrNotFound, KindNotFound},
		{"storage", &StorageError{Op: "begin", Err: errors.New("db down")}, KindStorage},
		{"unclassified", errors.New("boom"), KindStorage},
		{"deadline", context.DeadlineExceeded, KindStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	ve := &ValidationError{Fields: []FieldError{
		{Field: "title", Message: "title is required"},
		{Field: "description", Message: "must be a string"},
	}}
	if got, want := ve.Error(), "validation failed: title: title is required; description: must be a string"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := (&NotFoundError{ID: 42}).Error(); got != "todo 42 not found" {
		t.Fatalf("got %q", got)
	}

	cause := errors.New("connection refused")
	se := &StorageError{Op: "list", Err: cause}
	if !errors.Is(se, cause) {
		t.Fatalf("StorageError should unwrap to its cause")
	}
}

func TestValidateCreate(t *testing.T) {
	got, err := ValidateCreate(CreateIntent{Title: "  Buy milk ", Description: " keep spaces "})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.Title != "Buy milk" || got.Description != " keep spaces " {
		t.Fatalf("unexpected normalisation: %+v", got)
	}

	_, err = ValidateCreate(CreateIntent{Title: " "})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Message != "title is required" {
		t.Fatalf("expected title is required, got %v", err)
	}
}

func TestValidateUpdate(t *testing.T) {
	blank := ""
	_, err := ValidateUpdate(UpdateIntent{Title: &blank})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "title" {
		t.Fatalf("expected title field error, got %v", err)
	}

	title := " x "
	got, err := ValidateUpdate(UpdateIntent{Title: &title})
	if err != nil || got.Title == nil || *got.Title != "x" {
		t.Fatalf("expected trimmed title, got %+v, %v", got, err)
	}
	if title != " x " {
		t.Fatalf("caller's string was modified")
	}

	if _, err := ValidateUpdate(UpdateIntent{}); err != nil {
		t.Fatalf("empty intent should be valid: %v", err)
	}
}

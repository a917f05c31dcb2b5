package todo

import (
	"errors"
	"fmt"
	"strings"

	"todo-api/internal/model"
)

// Kind classifies the outcome of a service call.
type Kind int

const (
	KindOK Kind = iota
	KindValidation
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindValidation:
		return "validation_failed"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf maps an error returned by Service to its outcome kind.
// Errors the service did not classify are treated as storage failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindOK
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	if errors.Is(err, model.ErrNotFound) {
		return KindNotFound
	}
	return KindStorage
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("todo %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == model.ErrNotFound
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

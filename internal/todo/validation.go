package todo

import "strings"

type CreateIntent struct {
	Title       string
	Description string
}

// UpdateIntent carries a partial update. Nil fields are left untouched.
type UpdateIntent struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// ValidateCreate returns the normalized intent or a *ValidationError.
func ValidateCreate(in CreateIntent) (CreateIntent, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return CreateIntent{}, &ValidationError{Fields: []FieldError{
			{Field: "title", Message: "title is required"},
		}}
	}
	return CreateIntent{Title: title, Description: in.Description}, nil
}

// ValidateUpdate checks only the fields that are present.
func ValidateUpdate(in UpdateIntent) (UpdateIntent, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return UpdateIntent{}, &ValidationError{Fields: []FieldError{
				{Field: "title", Message: "title must not be empty when provided"},
			}}
		}
		in.Title = &title
	}
	return in, nil
}

package repo

import (
	"errors"
	"fmt"
)

// Error kinds. Every repository failure unwraps to exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// Error carries a caller-facing message; use errors.Is against the kinds above to branch.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func missingField(field string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: field + " is required"}
}

func invalidField(field string, value any) error {
	return &Error{Kind: ErrValidation, Field: field, Message: fmt.Sprintf("invalid %s %v", field, value)}
}

func notFound(kind, id string) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

func conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

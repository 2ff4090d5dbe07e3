// Package apperr contains the error taxonomy shared across layers so that
// handlers can map engine failures to stable HTTP responses.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested entity does not exist. Existence is
// always checked before authorization, so a missing record never leaks as a
// permission failure.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or out-of-range input with field-level
// detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a field-level ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthorizationError indicates the requester lacks the role or ownership
// required for the operation.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// Forbidden builds an AuthorizationError.
func Forbidden(message string) error {
	return &AuthorizationError{Message: message}
}

// ConflictError indicates the operation is incompatible with the current
// state of the entity (e.g. converting an already-converted lead).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict builds a ConflictError.
func Conflict(message string) error {
	return &ConflictError{Message: message}
}

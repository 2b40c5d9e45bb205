package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("proposal has already been decided")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrBadCredentials    = errors.New("unable to log in with provided credentials")
	ErrConflict          = errors.New("already exists")
)

// ValidationError reports malformed or contradictory input, keyed by field.
// The empty key holds errors that are not about a single field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil lets callers collect field errors and return nil when there are none.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e.Fields[k])
			continue
		}
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PermissionError means the principal is known but not allowed to act.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	if e.Reason == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Reason
}

func Forbidden(reason string) error { return &PermissionError{Reason: reason} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

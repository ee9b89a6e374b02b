package domain

import (
	"errors"
	"fmt"
)

// Error kinds every service failure is classified into at the request boundary
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is an expected failure whose message is safe to show to clients
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.kind }

func NotFound(message string) error {
	return &Error{kind: ErrNotFound, message: message}
}

func Conflict(message string) error {
	return &Error{kind: ErrConflict, message: message}
}

func Unauthorized(message string) error {
	return &Error{kind: ErrUnauthorized, message: message}
}

// ValidationError reports missing or malformed input
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

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Message extracts the client-facing message of an expected error
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var de *Error
	if errors.As(err, &de) {
		return de.message
	}
	return ""
}

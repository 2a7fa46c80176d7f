// Package apperr holds the error taxonomy shared by the services and the
// HTTP layer.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports a malformed or incomplete payload. No state is
// mutated when one is returned.
type ValidationError struct {
	Msg    string
	Fields []FieldError
}

func NewValidationError(msg string, flds ...FieldError) error {
	return &ValidationError{Msg: msg, Fields: flds}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Msg + ": " + strings.Join(parts, "; ")
}

// CollaboratorError wraps a failure of an external collaborator (object
// storage, text generation). Op names the failed call.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Op: op, Err: err}
}

// Status maps an error to the HTTP status the API answers with.
func Status(err error) int {
	var ve *ValidationError
	var ce *CollaboratorError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

package core

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned when no owner can be resolved for the call.
	ErrUnauthorized = errors.New("owner not authenticated")

	// ErrNotFound is the base of every domain not-found error; match it with errors.Is.
	ErrNotFound = errors.New("not found")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldError is a shortcut for a ValidationError on a single field.
func NewFieldError(field, msg string) error {
	return &ValidationError{Err: errors.New(field + ": " + msg), Fields: []FieldError{{Field: field, Error: msg}}}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ReferenceError turns the not-found of a lookup resolving an input reference into an error on that field.
// The lookups are owner-scoped, so a row of another owner is reported the same way.
func ReferenceError(field string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return NewFieldError(field, field+" does not reference an existing row")
	}
	return errors.Wrap(err, "resolving "+field)
}

// IsValidationError reports whether err is a ValidationError or validator.ValidationErrors.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	var fErrs validator.ValidationErrors
	return errors.As(err, &fErrs)
}

// StoreError is a failure reported by the backing store. It is never retried.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (err *StoreError) Error() string {
	return "store: " + err.Op + ": " + err.Err.Error()
}

func (err *StoreError) Unwrap() error { return err.Err }

func IsStoreError(err error) bool {
	var sErr *StoreError
	return errors.As(err, &sErr)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

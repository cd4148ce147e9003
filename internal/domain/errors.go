package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so handlers can map them to HTTP statuses
// without string matching on messages.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindStateConflict ErrorKind = "state_conflict"
	KindExternal      ErrorKind = "external_service"
	KindInternal      ErrorKind = "internal"
)

// AppError carries a user-safe message plus the wrapped cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *AppError {
	return newError(KindValidation, format, args...)
}

func NotFoundf(format string, args ...interface{}) *AppError {
	return newError(KindNotFound, format, args...)
}

func StateConflictf(format string, args ...interface{}) *AppError {
	return newError(KindStateConflict, format, args...)
}

func Externalf(format string, args ...interface{}) *AppError {
	return newError(KindExternal, format, args...)
}

func Internalf(format string, args ...interface{}) *AppError {
	return newError(KindInternal, format, args...)
}

// Wrap attaches a cause to an AppError built with one of the constructors.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// KindOf extracts the error kind, defaulting to KindInternal for anything
// that is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-safe message. Internal causes are not leaked.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

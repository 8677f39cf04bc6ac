package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error produced by the services wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
)

// Error is a categorised service error. Error() returns only the message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Unwrap returns the category sentinel
func (e *Error) Unwrap() error {
	return e.kind
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Validationf reports malformed or semantically invalid input
func Validationf(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

// NotFoundf reports a missing account, instrument, institution or transaction
func NotFoundf(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

// Conflictf reports a state conflict, such as a transaction already in the target status
func Conflictf(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

// Authenticationf reports missing or invalid credentials
func Authenticationf(format string, args ...interface{}) error {
	return newError(ErrAuthentication, format, args...)
}

// Authorizationf reports an authenticated user lacking permission
func Authorizationf(format string, args ...interface{}) error {
	return newError(ErrAuthorization, format, args...)
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

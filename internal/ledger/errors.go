package ledger

import (
	"errors"
	"fmt"
)

// The engine reports failures through four error kinds so the HTTP layer can
// pick a status code without string matching. Every message names the
// precondition that failed.

// ValidationError means the input itself is malformed. Retrying is useless.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError means a referenced party, item or transaction does not exist
// inside the caller's company scope.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError means the operation would violate a business rule on current
// state, e.g. stock driven below zero or a duplicate name.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// PersistenceError wraps a storage failure inside the unit of work. The whole
// unit has been rolled back by the time the caller sees it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// isDomainError reports whether err is one of the three caller-fault kinds,
// as opposed to a storage failure that should be wrapped.
func isDomainError(err error) bool {
	var ve *ValidationError
	var nfe *NotFoundError
	var ce *ConflictError
	return errors.As(err, &ve) || errors.As(err, &nfe) || errors.As(err, &ce)
}

// Package apperror defines the error taxonomy of the complaint workflow.
//
// Handlers translate these into HTTP statuses: NotFoundError to 404,
// InvalidStateError to 400 and ForbiddenError to 403. Anything else is an
// internal failure.
package apperror

import (
	"errors"
	"fmt"
)

// NotFoundError reports a failed id lookup.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func NotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateError reports an operation attempted from a disallowed state.
// The guard fires before any mutation.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func InvalidState(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError reports an actor without the right to perform an operation.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func Forbidden(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

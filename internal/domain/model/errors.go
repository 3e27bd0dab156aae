package model

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned when a task is not found in the store.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError indicates bad input rejected before any persistence.
// The HTTP layer maps it to a client error.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError indicates the task store was unreachable or rejected a write.
// It is fatal to the current operation and is not retried by the lifecycle
// engine itself.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// DispatchError indicates the queue broker was unreachable at enqueue time.
// The submission path converts it into a failed task plus a propagated error.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string { return fmt.Sprintf("dispatch failed: %v", e.Err) }

func (e *DispatchError) Unwrap() error { return e.Err }

// HandlerError carries a human-readable message for a task logic failure.
// It is recorded as the task's terminal error and retried at the queue level.
type HandlerError struct {
	Msg string
	Err error
}

func (e *HandlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *HandlerError) Unwrap() error { return e.Err }

// NewHandlerError builds a HandlerError with a formatted message.
func NewHandlerError(format string, args ...any) *HandlerError {
	return &HandlerError{Msg: fmt.Sprintf(format, args...)}
}

// WrapHandlerError attaches a cause to a handler failure message.
func WrapHandlerError(err error, format string, args ...any) *HandlerError {
	return &HandlerError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// Package swarmerrors defines the shared error taxonomy used across the
// orchestration runtime: sentinel errors for the common "not found" and
// "invalid" cases, plus wrapper types that carry enough context (component,
// id, cause) for a caller several layers up to make a retry/fail decision
// without string-matching error messages.
package swarmerrors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Callers should compare with errors.Is, never string match.
var (
	// ErrNotFound indicates an agent, task, artifact, or note lookup missed.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a phase or task-status transition that
	// is not in the allowed set.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrCycle indicates a dependency cycle was detected while building a DAG.
	ErrCycle = errors.New("cyclic dependency")

	// ErrEmpty indicates an operation produced an empty result where one was
	// required (e.g. a decomposition with zero tasks).
	ErrEmpty = errors.New("empty result")

	// ErrValidationFailed indicates a phase output failed schema validation.
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError wraps a malformed-input error with the component and
// identifier it was found in, so a log line or a Blackboard note can say
// exactly what failed without re-deriving it from a plain string.
type ValidationError struct {
	Component string // "agent", "artifact", or a phase name such as "pareto" or "strategic"
	ID        string
	Field     string
	Err       error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %q: field %q: %v", e.Component, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Component, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrValidationFailed) to succeed for any
// *ValidationError, regardless of the wrapped cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NewValidationError builds a ValidationError.
func NewValidationError(component, id, field string, err error) *ValidationError {
	return &ValidationError{Component: component, ID: id, Field: field, Err: err}
}

// TransientError wraps a provider/network failure that the Scheduler's retry
// loop may recover from. Retryable is explicit rather than inferred from the
// message so classification happens once, at the boundary where the error
// originates (rate limit, 5xx, timeout, connection reset).
type TransientError struct {
	Kind      string // "rate_limit", "server_error", "timeout", "connection_reset"
	Retryable bool
	Err       error
	At        time.Time
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient error (%s): %v", e.Kind, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError builds a TransientError stamped with the current time.
func NewTransientError(kind string, retryable bool, err error) *TransientError {
	return &TransientError{Kind: kind, Retryable: retryable, Err: err, At: time.Now()}
}

// IsRetryable reports whether err is a TransientError marked retryable.
func IsRetryable(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// TaskError wraps an unrecoverable failure inside an execution unit. It
// never aborts the session — the Scheduler marks the task failed and
// propagates `blocked` to dependents.
type TaskError struct {
	TaskID string
	Reason string // "timeout", "cancelled", "no-agent", "provider-error", ...
	Err    error
}

func (e *TaskError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task %s failed (%s): %v", e.TaskID, e.Reason, e.Err)
	}
	return fmt.Sprintf("task %s failed (%s)", e.TaskID, e.Reason)
}

func (e *TaskError) Unwrap() error { return e.Err }

// NewTaskError builds a TaskError.
func NewTaskError(taskID, reason string, err error) *TaskError {
	return &TaskError{TaskID: taskID, Reason: reason, Err: err}
}

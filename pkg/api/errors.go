package api

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks precondition failures. Operations failing with it
	// have not mutated anything.
	ErrValidation = errors.New("validation failed")

	// ErrLostConnection marks a property connection that an edit orphaned.
	ErrLostConnection = errors.New("property connection lost")

	// ErrNoMatch marks an equivalence search without structural counterpart.
	ErrNoMatch = errors.New("no structural counterpart")

	// ErrInvalidClipboard marks missing or non-restorable clipboard content.
	ErrInvalidClipboard = errors.New("invalid clipboard data")

	// ErrDanglingLink marks a relative link that was cleared because its
	// target was removed.
	ErrDanglingLink = errors.New("relative link target removed")

	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("operation cancelled")

	// ErrNotReady is the cause of validation errors for components that are
	// placeholders, below a placeholder or part of a busy task.
	ErrNotReady = errors.New("component not ready")

	ErrInvalidTarget    = errors.New("invalid target")
	ErrNotEligible      = errors.New("task not eligible to run")
	ErrAlreadyQueued    = errors.New("task already queued")
	ErrNotRunning       = errors.New("task not running")
	ErrTerminationState = errors.New("termination already requested")
	ErrUnknownClass     = errors.New("unknown component class")
)

// ValidationError reports an unmet precondition of an operation.
type ValidationError struct {
	Op        string
	Component string
	Err       error
}

// Invalid builds a ValidationError for op on component.
func Invalid(op, component string, err error) *ValidationError {
	return &ValidationError{Op: op, Component: component, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Component, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StructuralIntegrityWarning reports a connection that is destroyed or left
// dangling by an edit.
type StructuralIntegrityWarning struct {
	Connection     string
	Source         string
	SourceTask     string
	SourceProperty string
	Target         string
	TargetTask     string
	TargetProperty string
	Reason         string
}

func (w *StructuralIntegrityWarning) Error() string {
	msg := fmt.Sprintf("connection %s.%s (%s) -> %s.%s (%s) lost",
		w.Source, w.SourceProperty, w.SourceTask, w.Target, w.TargetProperty, w.TargetTask)
	if w.Reason != "" {
		msg += ": " + w.Reason
	}
	return msg
}

func (w *StructuralIntegrityWarning) Is(target error) bool { return target == ErrLostConnection }

// MatchingFailure reports an object that has no structural counterpart in a
// duplicate. The affected repair is skipped.
type MatchingFailure struct {
	Object string
	Reason string
}

func (f *MatchingFailure) Error() string {
	return fmt.Sprintf("no equivalent for %s: %s", f.Object, f.Reason)
}

func (f *MatchingFailure) Is(target error) bool { return target == ErrNoMatch }

// InvalidClipboardData reports clipboard content that cannot be pasted.
type InvalidClipboardData struct {
	Reason string
	Err    error
}

func (e *InvalidClipboardData) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid clipboard data: %s: %v", e.Reason, e.Err)
	}
	return "invalid clipboard data: " + e.Reason
}

func (e *InvalidClipboardData) Unwrap() error { return e.Err }

func (e *InvalidClipboardData) Is(target error) bool { return target == ErrInvalidClipboard }

// warning wraps an error returned by a calculator that finished with
// warnings instead of failing.
type warning struct {
	msg string
}

func (w *warning) Error() string { return "warning: " + w.msg }

// Warning returns an error that tells the executor a component completed
// with warnings.
func Warning(format string, args ...any) error {
	return &warning{msg: fmt.Sprintf(format, args...)}
}

// IsWarning reports whether err signals a warning rather than a failure.
func IsWarning(err error) bool {
	var w *warning
	return errors.As(err, &w)
}

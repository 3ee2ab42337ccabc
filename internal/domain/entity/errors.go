package entity

import (
	"errors"
	"fmt"
)

type ParseErrorKind string

const (
	ParseMissingMarker ParseErrorKind = "missing_action_marker"
	ParseMalformedCall ParseErrorKind = "malformed_call"
	ParseUnknownAction ParseErrorKind = "unknown_action"
	ParseNoActions     ParseErrorKind = "no_actions"
)

// ParseError means the prediction held no actionable output. It is recoverable:
// the round becomes a no-op.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
	Offset int
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("parse prediction: %s", e.Kind)
	}
	return fmt.Sprintf("parse prediction: %s at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

// CoordinateError means a coordinate literal could not be mapped. Only the
// affected action is dropped.
type CoordinateError struct {
	Literal string
	Reason  string
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("coordinate %q: %s", e.Literal, e.Reason)
}

// CaptureError wraps a screenshot failure. It is fatal to the round.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return "screenshot failed: " + e.Err.Error()
}

func (e *CaptureError) Unwrap() error { return e.Err }

// InvocationError wraps a model call failure. It is fatal to the round.
type InvocationError struct {
	Model string
	Err   error
}

func (e *InvocationError) Error() string {
	if e.Model == "" {
		return "model invocation failed: " + e.Err.Error()
	}
	return fmt.Sprintf("model %s invocation failed: %s", e.Model, e.Err.Error())
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ExecutionError reports an action the operator could not carry out.
type ExecutionError struct {
	Action  ActionType
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("execute %s: %s", e.Action, e.Err.Error())
	}
	return fmt.Sprintf("execute %s: %s", e.Action, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// CancelledError is returned when the caller aborted the run.
type CancelledError struct {
	Stage string
	Err   error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled while %s: %v", e.Stage, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

func IsRecoverable(err error) bool {
	var pe *ParseError
	var ce *CoordinateError
	var ee *ExecutionError
	return errors.As(err, &pe) || errors.As(err, &ce) || errors.As(err, &ee)
}

// Package fault defines the error taxonomy shared across the module. Every
// package returns a *fault.Error at its boundary so callers can branch on the
// code without string matching; the original cause stays wrapped and remains
// reachable through errors.Is / errors.As.
package fault

import (
	"context"
	"errors"
	"fmt"
)

// Code classifies an error for programmatic handling.
type Code string

const (
	// ProviderUnavailable means every configured provider for an external
	// capability failed, including the fallback.
	ProviderUnavailable Code = "PROVIDER_UNAVAILABLE"
	// Timeout means a budgeted operation exceeded its deadline.
	Timeout Code = "TIMEOUT"
	// ToolExecution means a tool handler failed after passing validation.
	ToolExecution Code = "TOOL_EXECUTION"
	// IdentityMismatch means a caller-supplied identity value did not match
	// the resolved destination of a final-action tool.
	IdentityMismatch Code = "IDENTITY_MISMATCH"
	// NotFound means a referenced entity does not exist or is not visible to
	// the caller.
	NotFound Code = "NOT_FOUND"
	// MissingDestination means the resolved contact has no address for the
	// requested channel.
	MissingDestination Code = "MISSING_DESTINATION"
	// Parse means structured output could not be decoded even after repair.
	Parse Code = "PARSE"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error without a cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around a cause. A nil cause returns nil so call
// sites can wrap unconditionally.
func Wrap(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var fe *Error
	for errors.As(err, &fe) {
		if fe.Code == code {
			return true
		}
		err = fe.Err
		fe = nil
	}
	return false
}

// CodeOf returns the outermost code in the chain, or "" for uncoded errors.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// FromContext converts context cancellation errors into Timeout faults and
// leaves everything else untouched. Budget boundaries call this so a blown
// deadline is distinguishable from a provider failure.
func FromContext(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(err, Timeout, "%s exceeded its time budget", what)
	}
	return err
}

// UserMessage returns a short operator-safe description without the wrapped
// cause chain, suitable for tool results shown back to a model or user.
func UserMessage(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}

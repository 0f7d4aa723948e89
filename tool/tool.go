// Package tool defines the tool abstraction, the registry that dispatches
// model-requested tool calls, and the built-in tools of the assistant.
package tool

import (
	"context"
	"fmt"

	"github.com/nementium/agentcore/logging"
)

// Tool is one callable capability exposed to the model.
type Tool interface {
	// Name returns the unique tool name used in tool call requests.
	Name() string
	// Description tells the model when to use the tool.
	Description() string
	// Parameters returns the JSON schema of the arguments.
	Parameters() map[string]any
	// Call executes the tool. The returned value is serialized to JSON for
	// the transcript; strings pass through unchanged.
	Call(ctx context.Context, inv *Invocation, args map[string]any) (any, error)
}

// Invocation carries the per-call context a tool may need. User is the
// authenticated caller; tools scope every record lookup to it.
type Invocation struct {
	User   string
	Logger logging.Logger
}

// ToolError provides structured error information for tool failures.
type ToolError struct {
	Tool    string         `json:"tool"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool '%s' error [%s]: %s", e.Tool, e.Code, e.Message)
}

// Tool error codes.
const (
	// ErrorCodeValidation indicates the arguments failed schema validation.
	ErrorCodeValidation = "VALIDATION_ERROR"
	// ErrorCodeExecution indicates the handler failed after validation.
	ErrorCodeExecution = "EXECUTION_ERROR"
	// ErrorCodeUnknownTool indicates the requested tool is not registered.
	ErrorCodeUnknownTool = "UNKNOWN_TOOL"
)

// NewValidationError creates a ToolError for parameter validation failures.
func NewValidationError(tool, message string, details map[string]any) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: ErrorCodeValidation, Details: details}
}

// NewExecutionError creates a ToolError for runtime execution failures.
func NewExecutionError(tool, message string, cause error) *ToolError {
	details := map[string]any{}
	if cause != nil {
		details["cause"] = cause.Error()
	}
	return &ToolError{Tool: tool, Message: message, Code: ErrorCodeExecution, Details: details}
}

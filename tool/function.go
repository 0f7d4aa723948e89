package tool

import (
	"context"

	"github.com/nementium/agentcore/internal/schema"
)

// HandlerFunc is the signature of a function tool handler.
type HandlerFunc func(ctx context.Context, inv *Invocation, args map[string]any) (any, error)

// FunctionTool wraps a Go function as a Tool, validating arguments against
// the parameter schema before the handler runs.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          HandlerFunc
}

// NewFunctionTool creates a function backed tool. parameters may come from
// schema.FromStruct or be written by hand.
func NewFunctionTool(name, description string, parameters map[string]any, fn HandlerFunc) *FunctionTool {
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// Name returns the tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the tool description.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the argument schema.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args and runs the handler.
func (t *FunctionTool) Call(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := schema.Validate(args, t.parameters); err != nil {
		return nil, NewValidationError(t.name, err.Error(), map[string]any{"args": args})
	}
	out, err := t.fn(ctx, inv, args)
	if err != nil {
		if _, ok := err.(*ToolError); ok {
			return nil, err
		}
		return nil, NewExecutionError(t.name, err.Error(), err)
	}
	return out, nil
}

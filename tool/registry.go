package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nementium/agentcore/logging"
	"github.com/nementium/agentcore/model"
)

// Result is the outcome of one dispatched tool call. Content is the payload
// serialized for the transcript; failures carry a user-safe error string.
type Result struct {
	Name    string
	CallID  string
	Success bool
	Content string
}

// Registry maps tool names to implementations and dispatches model-requested
// calls. It is an explicit value wired at startup; there is no global
// registration.
type Registry struct {
	tools        map[string]Tool
	order        []string
	finalActions map[string]bool
	logger       logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{
		tools:        make(map[string]Tool),
		finalActions: make(map[string]bool),
		logger:       logger,
	}
}

// Register adds a tool. Duplicate names are an error.
func (r *Registry) Register(t Tool) error {
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q is already registered", t.Name())
	}
	r.tools[t.Name()] = t
	r.order = append(r.order, t.Name())
	return nil
}

// RegisterFinalAction adds a tool whose successful execution ends the
// conversation turn deterministically.
func (r *Registry) RegisterFinalAction(t Tool) error {
	if err := r.Register(t); err != nil {
		return err
	}
	r.finalActions[t.Name()] = true
	return nil
}

// IsFinalAction reports whether the named tool is a final action.
func (r *Registry) IsFinalAction(name string) bool { return r.finalActions[name] }

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns the tool definitions to advertise to the model, in
// registration order.
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Dispatch executes one model-requested call. Unknown tools, bad arguments
// and handler failures all become error results; Dispatch never panics the
// conversation.
func (r *Registry) Dispatch(ctx context.Context, inv *Invocation, call model.ToolCall) Result {
	start := time.Now()

	// Providers normally assign call ids; transcripts need one either way.
	if call.ID == "" {
		call.ID = uuid.NewString()
	}

	t, ok := r.tools[call.Name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", call.Name, "fc_id", call.ID)
		return errorResult(call, fmt.Sprintf("la herramienta %q no existe", call.Name))
	}

	args, err := call.ArgumentsMap()
	if err != nil {
		r.logger.Warn("tool arguments are not valid JSON",
			"tool", call.Name, "fc_id", call.ID, "error", err.Error())
		return errorResult(call, "los argumentos de la herramienta no son JSON válido")
	}

	payload, err := t.Call(ctx, inv, args)
	dur := time.Since(start)
	if err != nil {
		r.logger.Error("tool dispatch failed",
			"tool", call.Name, "fc_id", call.ID, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return errorResult(call, userSafeError(err))
	}

	content, err := encodePayload(payload)
	if err != nil {
		r.logger.Error("tool payload not serializable",
			"tool", call.Name, "fc_id", call.ID, "error", err.Error())
		return errorResult(call, "el resultado de la herramienta no se pudo serializar")
	}

	r.logger.Info("tool dispatch completed",
		"tool", call.Name, "fc_id", call.ID, "duration_ms", dur.Milliseconds())
	return Result{Name: call.Name, CallID: call.ID, Success: true, Content: content}
}

func errorResult(call model.ToolCall, msg string) Result {
	content, _ := json.Marshal(map[string]any{"success": false, "error": msg})
	return Result{Name: call.Name, CallID: call.ID, Success: false, Content: string(content)}
}

func userSafeError(err error) string {
	if te, ok := err.(*ToolError); ok {
		return te.Message
	}
	return err.Error()
}

func encodePayload(payload any) (string, error) {
	switch v := payload.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

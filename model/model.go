// Package model defines the provider-agnostic chat types and the Provider
// interface that concrete adapters (openai, anthropic) implement.
package model

import (
	"context"
	"encoding/json"
)

// Roles used in the flat conversation transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a tool invocation requested by the model. Arguments is the raw
// JSON object the model produced; the dispatcher decodes it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ArgumentsMap decodes the raw arguments into a map. A missing or empty
// payload decodes to an empty map.
func (c ToolCall) ArgumentsMap() (map[string]any, error) {
	if c.Arguments == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(c.Arguments), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// Message is one entry of the transcript. Tool results set Role to RoleTool
// along with the call id and tool name they answer.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// FunctionDefinition describes one callable function exposed to the model.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolDefinition wraps a function definition in the provider tool envelope.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// Request is a single completion request.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// Response is the assistant turn the provider produced.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Info describes a provider implementation.
type Info struct {
	Name     string
	Provider string
}

// Provider generates one assistant turn for a request. Implementations honor
// ctx cancellation and return plain errors; classification into the fault
// taxonomy happens at the gateway.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Info() Info
}

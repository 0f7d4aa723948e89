// Package assist implements the conversation state machine of the user
// assistant: a bounded tool-augmented loop whose formatting and final-action
// handling are deterministic.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nementium/agentcore/logging"
	"github.com/nementium/agentcore/model"
	"github.com/nementium/agentcore/tool"
)

// Completer generates one assistant turn. *gateway.Gateway satisfies it.
type Completer interface {
	Complete(ctx context.Context, req model.Request) (*model.Response, error)
}

const (
	// DefaultMaxIterations caps tool rounds per turn.
	DefaultMaxIterations = 5
	// DefaultHistoryLimit caps how many prior turns are replayed.
	DefaultHistoryLimit = 10

	continuationPrompt = "¿En qué más puedo ayudarte?"
	apologyResponse    = "Lo siento, ha ocurrido un problema al procesar tu solicitud. Por favor, inténtalo de nuevo en un momento."
	emptyResponse      = "No pude procesar tu solicitud. Por favor, intenta de nuevo."
)

// Options configures an Assistant.
type Options struct {
	MaxIterations int
	HistoryLimit  int
	Logger        logging.Logger
}

// Assistant runs conversation turns against a model gateway and a tool
// registry.
type Assistant struct {
	completer     Completer
	registry      *tool.Registry
	maxIterations int
	historyLimit  int
	logger        logging.Logger
	now           func() time.Time
}

// New creates an Assistant.
func New(completer Completer, registry *tool.Registry, optFns ...func(o *Options)) *Assistant {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
		HistoryLimit:  DefaultHistoryLimit,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Assistant{
		completer:     completer,
		registry:      registry,
		maxIterations: opts.MaxIterations,
		historyLimit:  opts.HistoryLimit,
		logger:        opts.Logger,
		now:           time.Now,
	}
}

// HistoryItem is one prior turn supplied by the caller.
type HistoryItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is one user message to process.
type TurnRequest struct {
	Username string
	Message  string
	History  []HistoryItem
}

// TurnResult is the outcome of a processed turn.
type TurnResult struct {
	Response string
	Actions  []ExecutedAction
}

// HandleMessage runs the state machine for one user message. It always
// terminates: the iteration cap bounds the number of provider calls and a
// final action short-circuits to a deterministic response.
func (a *Assistant) HandleMessage(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	run := newRun(a.seedMessages(req))
	inv := &tool.Invocation{User: req.Username, Logger: a.logger}

	for {
		run = a.processStep(ctx, req.Username, run)

		if run.shouldFinish {
			break
		}
		// The cap is checked after the model turn, so a run that exhausts its
		// tool rounds still gets one closing call to summarize them.
		if run.iteration >= a.maxIterations {
			a.logger.Warn("iteration cap reached", "user", req.Username, "iterations", run.iteration)
			break
		}
		calls := run.lastToolCalls()
		if len(calls) == 0 {
			break
		}

		run = a.toolsStep(ctx, inv, run, calls)
		run = a.postToolsStep(run)

		if run.finalActionTriggered {
			return &TurnResult{
				Response: formatFinalAction(run),
				Actions:  run.Actions(),
			}, nil
		}
	}

	return &TurnResult{
		Response: formatResponse(run),
		Actions:  run.Actions(),
	}, nil
}

// seedMessages replays the newest history turns and appends the current
// message.
func (a *Assistant) seedMessages(req TurnRequest) []model.Message {
	history := req.History
	if len(history) > a.historyLimit {
		history = history[len(history)-a.historyLimit:]
	}

	messages := make([]model.Message, 0, len(history)+1)
	for _, item := range history {
		switch item.Role {
		case model.RoleUser, model.RoleAssistant:
			messages = append(messages, model.Message{Role: item.Role, Content: item.Content})
		}
	}
	return append(messages, model.Message{Role: model.RoleUser, Content: req.Message})
}

// processStep asks the model for the next turn. A provider failure finishes
// the run with an apology instead of surfacing an error to the caller.
func (a *Assistant) processStep(ctx context.Context, username string, run Run) Run {
	resp, err := a.completer.Complete(ctx, model.Request{
		System:   systemPrompt(username),
		Messages: run.Messages(),
		Tools:    a.registry.Definitions(),
	})
	if err != nil {
		a.logger.Error("model turn failed", "user", username, "iteration", run.Iteration(), "error", err.Error())
		return run.withFinish(apologyResponse)
	}

	assistantMsg := model.Message{
		Role:      model.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	}
	run = run.withMessage(assistantMsg)

	if len(resp.ToolCalls) == 0 {
		return run.withFinish(resp.Content)
	}
	a.logger.Debug("tool calls requested", "count", len(resp.ToolCalls), "iteration", run.Iteration())
	return run
}

// toolsStep dispatches every requested call and appends the tool messages.
func (a *Assistant) toolsStep(ctx context.Context, inv *tool.Invocation, run Run, calls []model.ToolCall) Run {
	msgs := make([]model.Message, 0, len(calls))
	for _, call := range calls {
		result := a.registry.Dispatch(ctx, inv, call)
		msgs = append(msgs, model.Message{
			Role:       model.RoleTool,
			Content:    result.Content,
			ToolCallID: result.CallID,
			ToolName:   result.Name,
		})
	}
	return run.withMessages(msgs...)
}

// postToolsStep counts the round, records executed actions and detects a
// final action among the newest tool results.
func (a *Assistant) postToolsStep(run Run) Run {
	run = run.withIteration()

	start := len(run.messages)
	for start > 0 && run.messages[start-1].Role == model.RoleTool {
		start--
	}

	for _, msg := range run.messages[start:] {
		run = run.withAction(msg.ToolName, a.now())
		if !a.registry.IsFinalAction(msg.ToolName) {
			continue
		}
		outcome := extractFinalActionOutcome(msg.Content)
		a.logger.Info("final action detected", "tool", msg.ToolName, "result", outcome)
		run = run.withFinalAction(outcome)
	}
	return run
}

// extractFinalActionOutcome pulls the user-facing narrative out of a final
// action payload. Unparseable content passes through verbatim.
func extractFinalActionOutcome(content string) string {
	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		if content == "" {
			return "Acción completada"
		}
		return content
	}
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}
	if errMsg, ok := payload["error"].(string); ok && errMsg != "" {
		return "❌ " + errMsg
	}
	return fmt.Sprintf("%v", payload)
}

package assist

import (
	"time"

	"github.com/nementium/agentcore/model"
)

// ExecutedAction records one tool dispatch made during a turn.
type ExecutedAction struct {
	Tool      string    `json:"tool"`
	Timestamp time.Time `json:"timestamp"`
}

// Run is the state of one conversation turn as it moves through the state
// machine. Values are immutable: every step returns a derived copy, so a
// step can never observe a sibling's partial mutation.
type Run struct {
	messages             []model.Message
	iteration            int
	shouldFinish         bool
	finalResponse        string
	finalActionTriggered bool
	finalActionResult    string
	actions              []ExecutedAction
}

// newRun seeds a Run with the prepared transcript.
func newRun(messages []model.Message) Run {
	return Run{messages: messages}
}

// Messages returns the transcript. Callers must not mutate it.
func (r Run) Messages() []model.Message { return r.messages }

// Iteration returns how many tool rounds have completed.
func (r Run) Iteration() int { return r.iteration }

// Actions returns the tool dispatches recorded so far.
func (r Run) Actions() []ExecutedAction { return r.actions }

func (r Run) withMessage(msg model.Message) Run {
	messages := make([]model.Message, len(r.messages), len(r.messages)+1)
	copy(messages, r.messages)
	r.messages = append(messages, msg)
	return r
}

func (r Run) withMessages(msgs ...model.Message) Run {
	messages := make([]model.Message, len(r.messages), len(r.messages)+len(msgs))
	copy(messages, r.messages)
	r.messages = append(messages, msgs...)
	return r
}

func (r Run) withFinish(response string) Run {
	r.shouldFinish = true
	r.finalResponse = response
	return r
}

func (r Run) withIteration() Run {
	r.iteration++
	return r
}

func (r Run) withAction(tool string, at time.Time) Run {
	actions := make([]ExecutedAction, len(r.actions), len(r.actions)+1)
	copy(actions, r.actions)
	r.actions = append(actions, ExecutedAction{Tool: tool, Timestamp: at})
	return r
}

func (r Run) withFinalAction(result string) Run {
	r.finalActionTriggered = true
	r.finalActionResult = result
	return r
}

// lastAssistantContent returns the most recent non-empty assistant text.
func (r Run) lastAssistantContent() string {
	for i := len(r.messages) - 1; i >= 0; i-- {
		msg := r.messages[i]
		if msg.Role == model.RoleAssistant && msg.Content != "" {
			return msg.Content
		}
	}
	return ""
}

// lastToolCalls returns the tool calls of the newest assistant message, or
// nil when the transcript does not end in a tool-calling turn.
func (r Run) lastToolCalls() []model.ToolCall {
	if len(r.messages) == 0 {
		return nil
	}
	last := r.messages[len(r.messages)-1]
	if last.Role != model.RoleAssistant {
		return nil
	}
	return last.ToolCalls
}

package model

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a scripted Provider for tests. Responses and errors are
// consumed in the order they were queued.
type MockProvider struct {
	mu        sync.Mutex
	name      string
	queue     []mockTurn
	callCount int
	// Delay, when set, is respected before answering so tests can exercise
	// timeout paths.
	Delay func(ctx context.Context) error
}

type mockTurn struct {
	resp *Response
	err  error
}

// NewMockProvider creates an empty scripted provider.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

// AddResponse queues a successful assistant turn.
func (m *MockProvider) AddResponse(resp Response) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockTurn{resp: &resp})
	return m
}

// AddTextResponse queues a plain text assistant turn.
func (m *MockProvider) AddTextResponse(content string) *MockProvider {
	return m.AddResponse(Response{Content: content})
}

// AddToolCallResponse queues an assistant turn requesting a single tool call.
func (m *MockProvider) AddToolCallResponse(id, name, arguments string) *MockProvider {
	return m.AddResponse(Response{ToolCalls: []ToolCall{{ID: id, Name: name, Arguments: arguments}}})
}

// AddError queues a failing turn.
func (m *MockProvider) AddError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockTurn{err: err})
	return m
}

// CallCount reports how many times Complete ran.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Complete pops the next scripted turn. Running past the script is an error
// so runaway loops fail loudly in tests.
func (m *MockProvider) Complete(ctx context.Context, _ Request) (*Response, error) {
	if m.Delay != nil {
		if err := m.Delay(ctx); err != nil {
			m.mu.Lock()
			m.callCount++
			m.mu.Unlock()
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	if len(m.queue) == 0 {
		return nil, fmt.Errorf("mock provider %s: no scripted response for call %d", m.name, m.callCount)
	}
	turn := m.queue[0]
	m.queue = m.queue[1:]
	if turn.err != nil {
		return nil, turn.err
	}
	return turn.resp, nil
}

// Info identifies the mock.
func (m *MockProvider) Info() Info {
	return Info{Name: m.name, Provider: "mock"}
}

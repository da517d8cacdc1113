package model

import (
	"context"
	"fmt"
)

// Roles used in completion requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request captures the normalized completion input produced by the composer.
type Request struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Info contains metadata about a completion provider implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Completion is the minimal interface the composer needs from a provider.
// Implementations must be safe for concurrent use.
type Completion interface {
	// Complete returns the assistant text for the given messages.
	Complete(ctx context.Context, req Request) (string, error)

	// Info returns information about the provider implementation.
	Info() Info
}

// MockCompletion is a lightweight in-memory Completion useful for tests & examples.
type MockCompletion struct {
	info      Info
	responses map[string]string
	err       error
	lastReq   Request
}

// NewMockCompletion constructs a MockCompletion.
func NewMockCompletion(name string) *MockCompletion {
	return &MockCompletion{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a user message.
func (m *MockCompletion) AddResponse(userMessage, response string) {
	m.responses[userMessage] = response
}

// Fail makes every Complete call return err. Used to exercise fallback paths.
func (m *MockCompletion) Fail(err error) { m.err = err }

// LastRequest returns the most recent request passed to Complete. Tests use
// it to assert on prompt assembly.
func (m *MockCompletion) LastRequest() Request { return m.lastReq }

// Complete implements Completion. It keys canned responses off the last user message.
func (m *MockCompletion) Complete(_ context.Context, req Request) (string, error) {
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	var lastUser string
	for _, msg := range req.Messages {
		if msg.Role == RoleUser {
			lastUser = msg.Content
		}
	}
	if resp, ok := m.responses[lastUser]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", lastUser), nil
}

// Info implements Completion.
func (m *MockCompletion) Info() Info { return m.info }

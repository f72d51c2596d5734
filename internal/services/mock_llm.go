package services

import (
	"context"
	"sync"

	"github.com/philfry41/grok-playground/pkg/chat"
)

// MockLLM is a mock implementation of LLMService for testing
type MockLLM struct {
	GenerateFunc func(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerateOptions) (string, error)

	// Track calls for testing
	GenerateCalls []GenerateCall

	mu sync.Mutex // protects all fields above
}

type GenerateCall struct {
	Messages []chat.ChatMessage
	Opts     chat.GenerateOptions
}

// NewMockLLM creates a new mock LLM service
func NewMockLLM() *MockLLM {
	return &MockLLM{
		GenerateCalls: make([]GenerateCall, 0),
	}
}

// Generate mocks response generation
func (m *MockLLM) Generate(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{Messages: messages, Opts: opts})

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, opts)
	}

	return "Mock response", nil
}

// ModelName returns a fixed model name.
func (m *MockLLM) ModelName() string { return "mock-model" }

// SetGenerateError sets up the mock to return an error on Generate
func (m *MockLLM) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerateOptions) (string, error) {
		return "", err
	}
}

// SetResponses queues fixed responses returned in order; the last one
// repeats once the queue is drained.
func (m *MockLLM) SetResponses(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := 0
	m.GenerateFunc = func(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerateOptions) (string, error) {
		resp := responses[min(i, len(responses)-1)]
		i++
		return resp, nil
	}
}

// Calls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLM) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]GenerateCall, len(m.GenerateCalls))
	copy(calls, m.GenerateCalls)
	return calls
}

// Reset clears all call tracking
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = make([]GenerateCall, 0)
	m.GenerateFunc = nil
}

package mock

import (
	"context"
	"strings"
	"sync"

	"ai-shopassist-be/pkg/llm"
)

// MockProvider is a test double for llm.LLMProvider.
// It allows custom behavior injection via function fields and records calls
// for assertions. Safe for concurrent use, which the combined strategy's
// fan-out requires.
type MockProvider struct {
	// ChatFunc is called by Chat if set. If nil, a short deterministic
	// reply derived from the last message is returned.
	ChatFunc func(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error)

	// GenerateFunc is called by Generate if set. If nil, Generate routes
	// through Chat.
	GenerateFunc func(ctx context.Context, prompt string, options ...llm.Option) (string, error)

	mu          sync.Mutex
	callCount   int
	lastHistory []llm.Message
}

var _ llm.LLMProvider = &MockProvider{}

// NewMockProvider creates a mock provider with default deterministic behavior.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastHistory = append([]llm.Message(nil), history...)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, history, options...)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Default: echo the tail of the last message so tests can assert the
	// prompt actually reached the provider.
	if len(history) == 0 {
		return "mock response", nil
	}
	last := history[len(history)-1].Content
	if idx := strings.LastIndex(last, "\n"); idx >= 0 && idx < len(last)-1 {
		last = last[idx+1:]
	}
	if len(last) > 80 {
		last = last[:80]
	}
	return "mock response to: " + last, nil
}

func (m *MockProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	m.mu.Lock()
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		m.mu.Lock()
		m.callCount++
		m.mu.Unlock()
		return fn(ctx, prompt, options...)
	}
	return m.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// CallCount returns the number of recorded provider calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastHistory returns the messages of the most recent Chat call.
func (m *MockProvider) LastHistory() []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastHistory
}

// Reset clears recorded calls and custom functions.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastHistory = nil
	m.ChatFunc = nil
	m.GenerateFunc = nil
}

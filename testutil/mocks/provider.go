package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm"
)

// MockProvider is a fake chat-completion provider with canned responses,
// error injection and call recording.
type MockProvider struct {
	mu sync.Mutex

	response  string
	responses []string // consumed in order when set, overriding response
	err       error
	delay     time.Duration

	calls []*llm.ChatRequest
}

// NewMockProvider returns a provider that answers "Mock reply".
func NewMockProvider() *MockProvider {
	return &MockProvider{response: "Mock reply"}
}

// WithResponse sets the fixed reply text.
func (m *MockProvider) WithResponse(text string) *MockProvider {
	m.response = text
	return m
}

// WithResponses sets a sequence of replies, one per call. The last one
// repeats once the sequence is exhausted.
func (m *MockProvider) WithResponses(texts ...string) *MockProvider {
	m.responses = texts
	return m
}

// WithError makes every call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.err = err
	return m
}

// WithDelay makes every call sleep before answering, for timeout tests.
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.delay = d
	return m
}

// Calls returns the recorded requests in call order.
func (m *MockProvider) Calls() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*llm.ChatRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Completion calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	n := len(m.calls)
	text := m.response
	if len(m.responses) > 0 {
		idx := n - 1
		if idx >= len(m.responses) {
			idx = len(m.responses) - 1
		}
		text = m.responses[idx]
	}
	err := m.err
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &llm.ChatResponse{
		Provider: m.Name(),
		Model:    "mock-model",
		Choices: []llm.ChatChoice{{
			Message:      llm.Message{Role: llm.RoleAssistant, Content: text},
			FinishReason: "stop",
		}},
	}, nil
}

func (m *MockProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: m.err == nil}, nil
}

func (m *MockProvider) Name() string { return "mock" }

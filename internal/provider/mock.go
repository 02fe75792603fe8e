package provider

import (
	"context"
	"sync"
	"time"
)

// MockProvider is a test double for Provider. It is also what the demo runs
// against when no API key is configured.
type MockProvider struct {
	mu      sync.Mutex
	Result  string
	Err     error
	Delay   time.Duration
	History []Request
}

// NewMockProvider creates a MockProvider with a canned result.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Result: "and the story continued from there.",
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Complete(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.History = append(m.History, req)
	result, err, delay := m.Result, m.Err, m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return result, nil
}

// Calls returns a copy of all requests made to this mock.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.History))
	copy(out, m.History)
	return out
}

package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-flashgen/internal/generation"
)

// MockProvider implements generation.Provider for testing
type MockProvider struct {
	// ProviderName is returned by Name; defaults to "mock".
	ProviderName string

	// CompleteFn allows test cases to mock the Complete behavior
	CompleteFn func(ctx context.Context, req generation.Request) (string, error)

	// Default response values
	Response string
	Err      error

	mu       sync.Mutex
	requests []generation.Request
}

var _ generation.Provider = (*MockProvider)(nil)

// Name implements generation.Provider.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Complete implements generation.Provider.
func (m *MockProvider) Complete(ctx context.Context, req generation.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, req)
	}
	return m.Response, m.Err
}

// Requests returns a copy of every request received so far.
func (m *MockProvider) Requests() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.requests...)
}

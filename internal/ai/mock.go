package ai

import (
	"context"
	"sync"
)

// MockProvider is a test double for Provider. An empty Response behaves
// like an envelope without candidate text.
type MockProvider struct {
	Response     string
	Err          error
	NoCredential bool
	// Gate, when set, blocks Generate until it is closed or ctx ends.
	Gate chan struct{}
	// Started receives a value each time Generate is entered, if set.
	Started chan struct{}

	mu          sync.Mutex
	calls       int
	lastRequest *GenerateRequest
}

// NewMockProvider creates a MockProvider that returns the given response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Response: response}
}

func (m *MockProvider) Configured() bool {
	return !m.NoCredential
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if m.NoCredential {
		return GenerateResponse{}, ErrMissingCredential
	}

	m.mu.Lock()
	m.calls++
	m.lastRequest = &req
	resp, err := m.Response, m.Err
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return GenerateResponse{}, &TransportError{Op: "mock", Err: ctx.Err()}
		}
	}

	if err != nil {
		return GenerateResponse{}, err
	}
	if resp == "" {
		return GenerateResponse{}, &TransportError{Op: "mock", Err: ErrEmptyContent}
	}
	return GenerateResponse{
		Text:         resp,
		Model:        "mock",
		InputTokens:  10,
		OutputTokens: len(resp),
	}, nil
}

// SetResponse replaces the canned response.
func (m *MockProvider) SetResponse(resp string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Response = resp
}

// Calls returns how many times Generate reached the provider.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the last request seen, or nil.
func (m *MockProvider) LastRequest() *GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

func (m *MockProvider) HealthCheck(_ context.Context) error {
	if m.NoCredential {
		return ErrMissingCredential
	}
	return m.Err
}

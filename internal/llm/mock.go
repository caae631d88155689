package llm

import (
	"context"
	"encoding/json"
	"sync"
)

const mockModel = "mock"

// MockResponse is one scripted outcome of MockProvider.Generate.
type MockResponse struct {
	Content    json.RawMessage
	Usage      Usage
	StopReason string // "end" when empty
	Err        error
}

// MockText scripts a plain-text reply.
func MockText(text string) MockResponse {
	return MockResponse{Content: json.RawMessage(text)}
}

// MockError scripts a failure.
func MockError(err error) MockResponse {
	return MockResponse{Err: err}
}

// MockProvider replays scripted responses in order and records every
// request. Once the script runs out it answers with Fallback, or with
// ErrProviderUnavailable when Fallback is nil.
type MockProvider struct {
	Fallback func(Request) MockResponse

	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var (
		next MockResponse
		ok   bool
	)
	if len(m.script) > 0 {
		next, m.script, ok = m.script[0], m.script[1:], true
	}
	fallback := m.Fallback
	m.mu.Unlock()

	switch {
	case ok:
	case fallback != nil:
		next = fallback(req)
	default:
		return nil, &ErrProviderUnavailable{}
	}

	if next.Err != nil {
		return nil, next.Err
	}
	usage := next.Usage
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	stop := next.StopReason
	if stop == "" {
		stop = "end"
	}
	return &Response{Content: next.Content, Usage: usage, Model: mockModel, StopReason: stop}, nil
}

func (m *MockProvider) ModelID() string {
	return mockModel
}

// LastCall returns the most recent request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.Calls); n > 0 {
		return m.Calls[n-1], true
	}
	return Request{}, false
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

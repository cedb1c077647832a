package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockResponse is one canned answer.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockCall is a request seen by a MockProvider.
type MockCall struct {
	Request
	Purpose string
}

// MockProvider answers from canned responses. A response registered for the
// request's purpose is returned every time that purpose is asked for; other
// requests consume the queue in order. It is safe for concurrent use.
type MockProvider struct {
	Model string

	mu        sync.Mutex
	queue     []MockResponse
	byPurpose map[string]MockResponse
	calls     []MockCall
}

// NewMockProvider returns a provider named "mock" with the given queue.
func NewMockProvider(queue ...MockResponse) *MockProvider {
	return &MockProvider{Model: "mock", queue: queue}
}

// OnPurpose registers the answer for every request labelled purpose.
func (m *MockProvider) OnPurpose(purpose string, r MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byPurpose == nil {
		m.byPurpose = make(map[string]MockResponse)
	}
	m.byPurpose[purpose] = r
	return m
}

// Enqueue appends answers to the queue.
func (m *MockProvider) Enqueue(rs ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, rs...)
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)

	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Request: req, Purpose: purpose})
	r, ok := m.byPurpose[purpose]
	if !ok && len(m.queue) > 0 {
		r, m.queue, ok = m.queue[0], m.queue[1:], true
	}
	m.mu.Unlock()

	if !ok {
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("no canned response for %q", purpose)}
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: m.Model, Stop: StopEnd}, nil
}

func (m *MockProvider) ModelID() string { return m.Model }

// Calls returns the requests seen so far, oldest first.
func (m *MockProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// Purposes lists the purpose of each call, oldest first.
func (m *MockProvider) Purposes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Purpose
	}
	return out
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

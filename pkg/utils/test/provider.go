package testutils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
)

// MockProvider is a test completion provider with a scripted reply. It
// records every request it receives.
type MockProvider struct {
	// Reply is returned by Complete.
	Reply string

	// Err, when set, is returned instead of Reply.
	Err error

	// Delay is waited before answering; cancellation cuts it short.
	Delay time.Duration

	mu       sync.Mutex
	requests []*llm.ChatRequest
}

func NewMockProvider(reply string) *MockProvider {
	return &MockProvider{Reply: reply}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Complete(ctx context.Context, req *llm.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Requests returns the requests received so far.
func (m *MockProvider) Requests() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*llm.ChatRequest(nil), m.requests...)
}

// LastRequest returns the most recent request or nil.
func (m *MockProvider) LastRequest() *llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// MockStreamer is a MockProvider that also streams Deltas.
type MockStreamer struct {
	*MockProvider

	// Deltas are delivered in order by Stream.
	Deltas []string

	// FailAfter, when positive, makes Stream fail after that many deltas.
	FailAfter int
}

func NewMockStreamer(deltas ...string) *MockStreamer {
	return &MockStreamer{MockProvider: NewMockProvider(""), Deltas: deltas}
}

func (m *MockStreamer) Stream(ctx context.Context, req *llm.ChatRequest, onDelta func(string) error) error {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	for i, d := range m.Deltas {
		if m.FailAfter > 0 && i == m.FailAfter {
			return fmt.Errorf("mock stream failure after %d deltas", i)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

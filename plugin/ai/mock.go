package ai

import (
	"context"
	"errors"
	"sync"
)

// MockCall records one Chat invocation on MockLLMService.
type MockCall struct {
	Messages []Message
	Options  ChatOptions
}

// MockLLMService is a scripted LLMService for tests.
type MockLLMService struct {
	// ChatFunc produces the reply. When nil, Reply/Err are returned.
	ChatFunc func(messages []Message, opts ChatOptions) (string, error)
	Reply    string
	Err      error

	mu    sync.Mutex
	calls []MockCall
}

// NewMockLLMService returns a mock that answers every call with reply.
func NewMockLLMService(reply string) *MockLLMService {
	return &MockLLMService{Reply: reply}
}

// NewFailingMockLLMService returns a mock that fails every call.
func NewFailingMockLLMService(err error) *MockLLMService {
	if err == nil {
		err = errors.New("mock llm failure")
	}
	return &MockLLMService{Err: err}
}

func (m *MockLLMService) Chat(ctx context.Context, messages []Message, opts ...ChatOption) (string, error) {
	o := ResolveChatOptions(opts...)

	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Messages: messages, Options: o})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.ChatFunc != nil {
		return m.ChatFunc(messages, o)
	}
	return m.Reply, m.Err
}

// Calls returns a copy of the recorded calls.
func (m *MockLLMService) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns the number of Chat invocations so far.
func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var _ LLMService = (*MockLLMService)(nil)

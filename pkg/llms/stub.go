package llms

import (
	"context"
	"sync"
)

// StubProvider is a deterministic, in-memory LLMProvider used by tests and
// by the CLI's zero-config mode when no API key is configured. Responses
// are served from a FIFO queue of canned Responses, or a default echo if
// the queue is empty.
type StubProvider struct {
	mu      sync.Mutex
	model   string
	queue   []Response
	fn      func(messages []Message, tools []ToolDefinition) (Response, error)
	calls   int
}

// NewStubProvider creates a stub bound to a fake model name.
func NewStubProvider(model string) *StubProvider {
	if model == "" {
		model = "stub-model"
	}
	return &StubProvider{model: model}
}

// Enqueue appends a canned response to be returned on successive Generate calls.
func (s *StubProvider) Enqueue(r Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, r)
}

// WithFunc installs a callback used instead of the queue, useful for tests
// that need to react to the exact messages/tools passed in.
func (s *StubProvider) WithFunc(fn func(messages []Message, tools []ToolDefinition) (Response, error)) *StubProvider {
	s.fn = fn
	return s
}

// Calls returns how many times Generate has been invoked.
func (s *StubProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StubProvider) ModelName() string { return s.model }
func (s *StubProvider) Close() error      { return nil }

func (s *StubProvider) Generate(_ context.Context, messages []Message, tools []ToolDefinition) (Response, error) {
	s.mu.Lock()
	s.calls++
	fn := s.fn
	var queued *Response
	if len(s.queue) > 0 {
		q := s.queue[0]
		s.queue = s.queue[1:]
		queued = &q
	}
	s.mu.Unlock()

	if fn != nil {
		return fn(messages, tools)
	}
	if queued != nil {
		return *queued, nil
	}

	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}
	return Response{Text: "stub response to: " + last, FinishReason: "stop"}, nil
}

var _ LLMProvider = (*StubProvider)(nil)

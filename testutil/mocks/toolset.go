package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/BaSui01/agentbridge/llm"
)

// StaticToolset serves a fixed set of tools whose results come from a
// map of handlers.
type StaticToolset struct {
	ToolsetName string
	Schemas     []llm.ToolSchema
	Handlers    map[string]func(args json.RawMessage) (json.RawMessage, error)

	mu     sync.Mutex
	calls  []llm.ToolCall
	closed bool
}

func (s *StaticToolset) Name() string {
	if s.ToolsetName == "" {
		return "static"
	}
	return s.ToolsetName
}

func (s *StaticToolset) Tools(ctx context.Context) ([]llm.ToolSchema, error) {
	return s.Schemas, nil
}

func (s *StaticToolset) Call(ctx context.Context, call llm.ToolCall) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	handler, ok := s.Handlers[call.Name]
	if !ok {
		return nil, fmt.Errorf("no handler for tool %q", call.Name)
	}
	return handler(call.Arguments)
}

func (s *StaticToolset) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Calls returns the recorded tool calls in order.
func (s *StaticToolset) Calls() []llm.ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.ToolCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Closed reports whether Close was called.
func (s *StaticToolset) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Package mocks provides test doubles for providers and toolsets.
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/agentbridge/llm"
)

// ScriptedProvider replays a fixed sequence of completion results, one
// per call. It records every request so tests can assert on what the
// runner sent.
type ScriptedProvider struct {
	mu       sync.Mutex
	script   []ScriptedTurn
	cursor   int
	requests []*llm.ChatRequest
}

// ScriptedTurn is one provider reply: either a response or an error.
type ScriptedTurn struct {
	Response *llm.ChatResponse
	Err      error
}

// NewScriptedProvider builds a provider from the given turns. Calls
// beyond the script return the last turn again.
func NewScriptedProvider(turns ...ScriptedTurn) *ScriptedProvider {
	return &ScriptedProvider{script: turns}
}

// TextTurn is a convenience for a plain assistant reply.
func TextTurn(content string) ScriptedTurn {
	return ScriptedTurn{Response: &llm.ChatResponse{
		Choices: []llm.ChatChoice{{
			Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
			FinishReason: "stop",
		}},
		Usage: llm.ChatUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}}
}

// ToolCallTurn is a convenience for a reply requesting tool calls.
func ToolCallTurn(calls ...llm.ToolCall) ScriptedTurn {
	return ScriptedTurn{Response: &llm.ChatResponse{
		Choices: []llm.ChatChoice{{
			Message:      llm.Message{Role: llm.RoleAssistant, ToolCalls: calls},
			FinishReason: "tool_calls",
		}},
		Usage: llm.ChatUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}}
}

// ErrorTurn is a convenience for a failing call.
func ErrorTurn(err error) ScriptedTurn {
	return ScriptedTurn{Err: err}
}

func (p *ScriptedProvider) Name() string { return "scripted" }

func (p *ScriptedProvider) SupportsNativeFunctionCalling() bool { return true }

func (p *ScriptedProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	reqCopy := *req
	reqCopy.Messages = append([]llm.Message{}, req.Messages...)
	p.requests = append(p.requests, &reqCopy)

	if len(p.script) == 0 {
		return TextTurn("ok").Response, nil
	}
	turn := p.script[min(p.cursor, len(p.script)-1)]
	p.cursor++
	if turn.Err != nil {
		return nil, turn.Err
	}
	return turn.Response, nil
}

func (p *ScriptedProvider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	resp, err := p.Completion(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan llm.StreamChunk, 1)
	ch <- llm.StreamChunk{
		Delta:        llm.Message{Role: llm.RoleAssistant, Content: resp.Choices[0].Message.Content},
		FinishReason: resp.Choices[0].FinishReason,
	}
	close(ch)
	return ch, nil
}

func (p *ScriptedProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

// Requests returns the recorded requests in call order.
func (p *ScriptedProvider) Requests() []*llm.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*llm.ChatRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// CallCount reports how many completions were requested.
func (p *ScriptedProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

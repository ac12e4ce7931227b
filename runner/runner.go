// Package runner drives an agent through a run: it persists the user
// message, loops the model against the agent's tools, and streams every
// event back to the caller as it happens.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentbridge/agent"
	"github.com/BaSui01/agentbridge/internal/metrics"
	"github.com/BaSui01/agentbridge/llm"
	"github.com/BaSui01/agentbridge/session"
)

// Config assembles a Runner.
type Config struct {
	// AppName scopes sessions in the store.
	AppName string

	// MaxIterations bounds the model/tool loop. Default 10.
	MaxIterations int
}

// Runner executes one agent against one session service.
type Runner struct {
	cfg      Config
	agent    *agent.Agent
	provider llm.Provider
	sessions session.Service
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// New wires a runner. The metrics collector is optional.
func New(cfg Config, ag *agent.Agent, provider llm.Provider, sessions session.Service, collector *metrics.Collector, logger *zap.Logger) (*Runner, error) {
	if cfg.AppName == "" {
		return nil, fmt.Errorf("runner: app name is required")
	}
	if ag == nil {
		return nil, fmt.Errorf("runner: agent is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("runner: provider is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("runner: session service is required")
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		agent:    ag,
		provider: provider,
		sessions: sessions,
		metrics:  collector,
		logger:   logger.With(zap.String("component", "runner"), zap.String("agent", ag.Name())),
	}, nil
}

// Run executes one turn. The user message is recorded verbatim, then
// the model is looped against the agent's tools until it produces a
// response with no tool calls. Events stream on the returned channel,
// which closes when the run ends; a run that fails mid-way delivers a
// final event carrying the error in Err.
func (r *Runner) Run(ctx context.Context, userID, sessionID string, message llm.Message) (<-chan session.Event, error) {
	if _, err := r.sessions.Get(ctx, r.cfg.AppName, userID, sessionID); err != nil {
		return nil, err
	}

	events := make(chan session.Event, 16)
	go func() {
		defer close(events)
		start := time.Now()
		status := "success"
		if err := r.run(ctx, userID, sessionID, message, events); err != nil {
			status = "error"
			r.logger.Error("run failed", zap.Error(err))
			events <- session.Event{
				ID:        "run-error",
				Author:    r.agent.Name(),
				Timestamp: time.Now().UTC(),
				Message:   llm.Message{Role: llm.RoleAssistant},
				Err:       err,
			}
		}
		if r.metrics != nil {
			r.metrics.RecordRun(r.agent.Name(), status, time.Since(start))
		}
	}()
	return events, nil
}

func (r *Runner) run(ctx context.Context, userID, sessionID string, message llm.Message, events chan<- session.Event) error {
	userEvent := session.NewEvent("user", message)
	if err := r.append(ctx, userID, sessionID, userEvent); err != nil {
		return err
	}
	events <- userEvent

	tools, err := r.agent.Tools(ctx)
	if err != nil {
		return fmt.Errorf("runner: failed to list tools: %w", err)
	}

	for i := 0; i < r.cfg.MaxIterations; i++ {
		sess, err := r.sessions.Get(ctx, r.cfg.AppName, userID, sessionID)
		if err != nil {
			return err
		}

		req := &llm.ChatRequest{
			Model:    r.agent.Model(),
			Messages: withInstruction(r.agent.Instruction(), sess.Messages()),
			Tools:    tools,
		}

		llmStart := time.Now()
		resp, err := r.provider.Completion(ctx, req)
		if r.metrics != nil {
			status := "success"
			if err != nil {
				status = "error"
			}
			r.metrics.RecordLLMRequest(r.provider.Name(), r.agent.Model(), status, time.Since(llmStart))
		}
		if err != nil {
			return fmt.Errorf("runner: completion failed at iteration %d: %w", i+1, err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("runner: provider returned no choices")
		}
		if r.metrics != nil && resp.Usage.TotalTokens > 0 {
			r.metrics.RecordTokens(r.provider.Name(), r.agent.Model(), "prompt", resp.Usage.PromptTokens)
			r.metrics.RecordTokens(r.provider.Name(), r.agent.Model(), "completion", resp.Usage.CompletionTokens)
		}

		choice := resp.Choices[0]
		modelEvent := session.NewEvent(r.agent.Name(), choice.Message)
		modelEvent.Final = len(choice.Message.ToolCalls) == 0
		if err := r.append(ctx, userID, sessionID, modelEvent); err != nil {
			return err
		}
		events <- modelEvent

		if modelEvent.Final {
			return nil
		}

		// Tool failures do not abort the run: the error text goes back
		// to the model as the tool result so it can recover.
		results, err := r.agent.Execute(ctx, choice.Message.ToolCalls)
		if err != nil {
			return err
		}
		for _, result := range results {
			status := "success"
			if result.Error != "" {
				status = "error"
				r.logger.Warn("tool execution failed",
					zap.String("tool", result.Name),
					zap.String("error", result.Error))
			}
			if r.metrics != nil {
				r.metrics.RecordToolExecution(result.Name, status, result.Duration)
			}

			toolEvent := session.NewEvent(r.agent.Name(), result.ToMessage())
			if err := r.append(ctx, userID, sessionID, toolEvent); err != nil {
				return err
			}
			events <- toolEvent
		}
	}

	return fmt.Errorf("runner: max iterations reached (%d)", r.cfg.MaxIterations)
}

func (r *Runner) append(ctx context.Context, userID, sessionID string, event session.Event) error {
	return r.sessions.AppendEvent(ctx, r.cfg.AppName, userID, sessionID, event)
}

// withInstruction prefixes the system prompt when one is configured.
func withInstruction(instruction string, msgs []llm.Message) []llm.Message {
	if instruction == "" {
		return msgs
	}
	out := make([]llm.Message, 0, len(msgs)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: instruction})
	return append(out, msgs...)
}

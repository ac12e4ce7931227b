// Package agent defines the LLM agent: a model binding, an instruction,
// and the toolsets whose tools the model may call.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/agentbridge/llm"
	"github.com/BaSui01/agentbridge/tools"
)

// Toolset is the tool surface an agent draws from.
type Toolset = tools.Toolset

// Config assembles an Agent. Name and Model are required.
type Config struct {
	// Name identifies the agent in sessions and logs.
	Name string

	// Model is the identifier passed to the provider.
	Model string

	// Instruction is the system prompt.
	Instruction string

	// Description is a short human-readable summary.
	Description string

	// Toolsets are queried for tools in order. When two toolsets
	// advertise the same tool name, the earlier one wins.
	Toolsets []Toolset
}

// Agent binds a provider-agnostic model name to an instruction and a
// set of toolsets. Tool calls run through a registry rebuilt on each
// Tools call, so toolsets may change their catalogue between turns.
type Agent struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.RWMutex
	executor *tools.Executor
}

// New validates the configuration and returns the agent.
func New(cfg Config, logger *zap.Logger) (*Agent, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("agent: name is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("agent: model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		cfg:    cfg,
		logger: logger.With(zap.String("agent", cfg.Name)),
	}, nil
}

func (a *Agent) Name() string        { return a.cfg.Name }
func (a *Agent) Model() string       { return a.cfg.Model }
func (a *Agent) Instruction() string { return a.cfg.Instruction }
func (a *Agent) Description() string { return a.cfg.Description }

// Tools aggregates schemas across all toolsets into a fresh registry.
// Later duplicates are dropped so the model never sees two tools with
// the same name.
func (a *Agent) Tools(ctx context.Context) ([]llm.ToolSchema, error) {
	registry := tools.NewRegistry(a.logger)
	var schemas []llm.ToolSchema

	for _, ts := range a.cfg.Toolsets {
		list, err := ts.Tools(ctx)
		if err != nil {
			return nil, fmt.Errorf("agent: toolset %s: %w", ts.Name(), err)
		}
		for _, schema := range list {
			if registry.Has(schema.Name) {
				a.logger.Warn("dropping duplicate tool",
					zap.String("tool", schema.Name),
					zap.String("dropped_from", ts.Name()))
				continue
			}
			owner := ts
			fn := func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
				return owner.Call(ctx, llm.ToolCall{Name: schema.Name, Arguments: args})
			}
			if err := registry.Register(schema.Name, fn, tools.ToolMetadata{Schema: schema}); err != nil {
				return nil, fmt.Errorf("agent: toolset %s: %w", ts.Name(), err)
			}
			schemas = append(schemas, schema)
		}
	}

	a.mu.Lock()
	a.executor = tools.NewExecutor(registry, a.logger)
	a.mu.Unlock()
	return schemas, nil
}

// Execute runs the calls concurrently through the tool executor,
// preserving input order. Per-call failures come back in the result's
// Error field rather than as an error return.
func (a *Agent) Execute(ctx context.Context, calls []llm.ToolCall) ([]tools.ToolResult, error) {
	a.mu.RLock()
	executor := a.executor
	a.mu.RUnlock()

	if executor == nil {
		if _, err := a.Tools(ctx); err != nil {
			return nil, err
		}
		a.mu.RLock()
		executor = a.executor
		a.mu.RUnlock()
	}
	return executor.Execute(ctx, calls), nil
}

// Close closes every toolset, collecting errors.
func (a *Agent) Close() error {
	var errs []error
	for _, ts := range a.cfg.Toolsets {
		if err := ts.Close(); err != nil {
			errs = append(errs, fmt.Errorf("agent: toolset %s: %w", ts.Name(), err))
		}
	}
	return errors.Join(errs...)
}

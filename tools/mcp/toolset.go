package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/agentbridge/llm"
)

const (
	clientName    = "agentbridge"
	clientVersion = "1.0.0"
)

// Config configures a Toolset backed by a stdio MCP server.
type Config struct {
	Server ServerParameters

	// ToolFilter keeps only the named tools when non-empty.
	ToolFilter []string
}

// Toolset implements tools.Toolset over one MCP server process. The
// process is launched and the handshake performed in NewToolset, so a
// returned Toolset is ready to serve calls.
type Toolset struct {
	cfg       Config
	transport *stdioTransport
	client    *Client
	logger    *zap.Logger
}

// NewToolset launches the server, connects, and verifies it responds
// to the initialize handshake.
func NewToolset(ctx context.Context, cfg Config, logger *zap.Logger) (*Toolset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "mcp_toolset"))

	transport, err := startStdioTransport(cfg.Server, logger)
	if err != nil {
		return nil, err
	}

	client := NewClient(transport.stdout, transport.stdin, logger)
	if err := client.Connect(ctx, clientName, clientVersion); err != nil {
		_ = transport.Close()
		return nil, err
	}

	return &Toolset{cfg: cfg, transport: transport, client: client, logger: logger}, nil
}

func (t *Toolset) Name() string { return "mcp" }

// Tools lists the server's tools as model-facing schemas, applying the
// configured filter.
func (t *Toolset) Tools(ctx context.Context) ([]llm.ToolSchema, error) {
	defs, err := t.client.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	var allowed map[string]bool
	if len(t.cfg.ToolFilter) > 0 {
		allowed = make(map[string]bool, len(t.cfg.ToolFilter))
		for _, name := range t.cfg.ToolFilter {
			allowed[name] = true
		}
	}

	schemas := make([]llm.ToolSchema, 0, len(defs))
	for _, def := range defs {
		if allowed != nil && !allowed[def.Name] {
			continue
		}
		params := def.InputSchema
		if len(params) == 0 {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		schemas = append(schemas, llm.ToolSchema{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  params,
		})
	}
	return schemas, nil
}

// Call forwards the tool call to the server. Text results that are not
// already JSON are wrapped so callers always get a JSON value back.
func (t *Toolset) Call(ctx context.Context, call llm.ToolCall) (json.RawMessage, error) {
	if t.isFiltered(call.Name) {
		return nil, fmt.Errorf("mcp: tool %q is not exposed by this toolset", call.Name)
	}

	text, err := t.client.CallTool(ctx, call.Name, call.Arguments)
	if err != nil {
		return nil, err
	}

	raw := json.RawMessage(text)
	if json.Valid(raw) {
		return raw, nil
	}
	return json.Marshal(map[string]string{"result": text})
}

// Close shuts the server process down first so its stdout reaches EOF
// and the client's read pump can drain, then closes the client.
func (t *Toolset) Close() error {
	transportErr := t.transport.Close()
	clientErr := t.client.Close()
	if transportErr != nil {
		return transportErr
	}
	return clientErr
}

func (t *Toolset) isFiltered(name string) bool {
	if len(t.cfg.ToolFilter) == 0 {
		return false
	}
	for _, allowed := range t.cfg.ToolFilter {
		if allowed == name {
			return false
		}
	}
	return true
}

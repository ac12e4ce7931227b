package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentbridge/llm"
)

type stubToolset struct {
	name    string
	schemas []llm.ToolSchema
	calls   []string
	closed  bool
}

func (s *stubToolset) Name() string { return s.name }

func (s *stubToolset) Tools(ctx context.Context) ([]llm.ToolSchema, error) {
	return s.schemas, nil
}

func (s *stubToolset) Call(ctx context.Context, call llm.ToolCall) (json.RawMessage, error) {
	s.calls = append(s.calls, call.Name)
	return json.RawMessage(fmt.Sprintf(`{"from":%q}`, s.name)), nil
}

func (s *stubToolset) Close() error {
	s.closed = true
	return nil
}

func schemaNamed(name string) llm.ToolSchema {
	return llm.ToolSchema{Name: name, Parameters: json.RawMessage(`{"type":"object"}`)}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Model: "gemini-2.5-flash"}, nil)
	require.Error(t, err)

	_, err = New(Config{Name: "helper"}, nil)
	require.Error(t, err)

	a, err := New(Config{Name: "helper", Model: "gemini-2.5-flash", Instruction: "be helpful"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "helper", a.Name())
	assert.Equal(t, "gemini-2.5-flash", a.Model())
	assert.Equal(t, "be helpful", a.Instruction())
}

func TestAgent_ToolsAggregatesAcrossToolsets(t *testing.T) {
	api := &stubToolset{name: "api", schemas: []llm.ToolSchema{schemaNamed("get_users"), schemaNamed("post_users")}}
	fs := &stubToolset{name: "fs", schemas: []llm.ToolSchema{schemaNamed("read_file")}}

	a, err := New(Config{Name: "helper", Model: "m", Toolsets: []Toolset{api, fs}}, nil)
	require.NoError(t, err)

	schemas, err := a.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, schemas, 3)

	names := []string{schemas[0].Name, schemas[1].Name, schemas[2].Name}
	assert.Equal(t, []string{"get_users", "post_users", "read_file"}, names)
}

func TestAgent_DuplicateToolFirstWins(t *testing.T) {
	first := &stubToolset{name: "first", schemas: []llm.ToolSchema{schemaNamed("read_file")}}
	second := &stubToolset{name: "second", schemas: []llm.ToolSchema{schemaNamed("read_file")}}

	a, err := New(Config{Name: "helper", Model: "m", Toolsets: []Toolset{first, second}}, nil)
	require.NoError(t, err)

	schemas, err := a.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, schemas, 1)

	results, err := a.Execute(context.Background(), []llm.ToolCall{{ID: "c1", Name: "read_file"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Empty(t, results[0].Error)
	assert.Equal(t, []string{"read_file"}, first.calls)
	assert.Empty(t, second.calls)
}

func TestAgent_ExecuteRoutesToOwner(t *testing.T) {
	api := &stubToolset{name: "api", schemas: []llm.ToolSchema{schemaNamed("get_users")}}
	fs := &stubToolset{name: "fs", schemas: []llm.ToolSchema{schemaNamed("read_file")}}

	a, err := New(Config{Name: "helper", Model: "m", Toolsets: []Toolset{api, fs}}, nil)
	require.NoError(t, err)

	// No prior Tools call: the registry is populated on demand.
	results, err := a.Execute(context.Background(), []llm.ToolCall{
		{ID: "c1", Name: "read_file"},
		{ID: "c2", Name: "unknown_tool"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Empty(t, results[0].Error)
	assert.JSONEq(t, `{"from":"fs"}`, string(results[0].Result))
	assert.Equal(t, "c1", results[0].ToolCallID)

	assert.Contains(t, results[1].Error, "not found")
}

func TestAgent_CloseClosesAllToolsets(t *testing.T) {
	api := &stubToolset{name: "api"}
	fs := &stubToolset{name: "fs"}

	a, err := New(Config{Name: "helper", Model: "m", Toolsets: []Toolset{api, fs}}, nil)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.True(t, api.closed)
	assert.True(t, fs.closed)
}

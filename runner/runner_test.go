package runner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentbridge/agent"
	"github.com/BaSui01/agentbridge/llm"
	"github.com/BaSui01/agentbridge/session"
	"github.com/BaSui01/agentbridge/testutil/mocks"
)

func userToolset() *mocks.StaticToolset {
	return &mocks.StaticToolset{
		ToolsetName: "api",
		Schemas: []llm.ToolSchema{{
			Name:       "get_users",
			Parameters: json.RawMessage(`{"type":"object","properties":{}}`),
		}},
		Handlers: map[string]func(json.RawMessage) (json.RawMessage, error){
			"get_users": func(json.RawMessage) (json.RawMessage, error) {
				return json.RawMessage(`{"data":[{"id":1,"first_name":"George"}]}`), nil
			},
		},
	}
}

func newRunner(t *testing.T, provider llm.Provider, ts agent.Toolset) (*Runner, session.Service) {
	t.Helper()

	ag, err := agent.New(agent.Config{
		Name:        "helper",
		Model:       "gemini-2.5-flash",
		Instruction: "You help with the users API and local files.",
		Toolsets:    []agent.Toolset{ts},
	}, nil)
	require.NoError(t, err)

	svc := session.NewInMemoryService()
	r, err := New(Config{AppName: "demo"}, ag, provider, svc, nil, nil)
	require.NoError(t, err)
	return r, svc
}

func collect(t *testing.T, ch <-chan session.Event) []session.Event {
	t.Helper()
	var events []session.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestRun_PlainResponse(t *testing.T) {
	provider := mocks.NewScriptedProvider(mocks.TextTurn("Hello there."))
	r, svc := newRunner(t, provider, userToolset())
	ctx := context.Background()

	_, err := svc.Create(ctx, "demo", "u1", "s1")
	require.NoError(t, err)

	ch, err := r.Run(ctx, "u1", "s1", llm.Message{Role: llm.RoleUser, Content: "hi"})
	require.NoError(t, err)
	events := collect(t, ch)

	require.Len(t, events, 2)
	assert.Equal(t, "user", events[0].Author)
	assert.Equal(t, "hi", events[0].Message.Content)
	assert.True(t, events[1].IsFinalResponse())
	assert.Equal(t, "Hello there.", events[1].Message.Content)
}

func TestRun_UserMessageRecordedVerbatim(t *testing.T) {
	provider := mocks.NewScriptedProvider(mocks.TextTurn("ok"))
	r, svc := newRunner(t, provider, userToolset())
	ctx := context.Background()
	_, err := svc.Create(ctx, "demo", "u1", "s1")
	require.NoError(t, err)

	prompt := "Get first_name & last_name of all users from users api"
	ch, err := r.Run(ctx, "u1", "s1", llm.Message{Role: llm.RoleUser, Content: prompt})
	require.NoError(t, err)
	collect(t, ch)

	sess, err := svc.Get(ctx, "demo", "u1", "s1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Events)
	assert.Equal(t, prompt, sess.Events[0].Message.Content)

	// The provider saw the instruction as a system message followed by
	// the untouched user prompt.
	reqs := provider.Requests()
	require.Len(t, reqs, 1)
	require.GreaterOrEqual(t, len(reqs[0].Messages), 2)
	assert.Equal(t, llm.RoleSystem, reqs[0].Messages[0].Role)
	assert.Equal(t, prompt, reqs[0].Messages[1].Content)
}

func TestRun_ToolLoop(t *testing.T) {
	provider := mocks.NewScriptedProvider(
		mocks.ToolCallTurn(llm.ToolCall{ID: "c1", Name: "get_users", Arguments: json.RawMessage(`{}`)}),
		mocks.TextTurn("The first user is George."),
	)
	ts := userToolset()
	r, svc := newRunner(t, provider, ts)
	ctx := context.Background()
	_, err := svc.Create(ctx, "demo", "u1", "s1")
	require.NoError(t, err)

	ch, err := r.Run(ctx, "u1", "s1", llm.Message{Role: llm.RoleUser, Content: "list users"})
	require.NoError(t, err)
	events := collect(t, ch)

	// user, model tool call, tool result, final response
	require.Len(t, events, 4)
	require.Len(t, events[1].FunctionCalls(), 1)
	assert.Equal(t, "get_users", events[1].FunctionCalls()[0].Name)
	assert.True(t, events[2].FunctionResponses())
	assert.Equal(t, "c1", events[2].Message.ToolCallID)
	assert.True(t, events[3].IsFinalResponse())
	assert.Equal(t, "The first user is George.", events[3].Message.Content)

	require.Len(t, ts.Calls(), 1)
	assert.Equal(t, 2, provider.CallCount())

	// Second completion saw the tool result in history.
	second := provider.Requests()[1]
	var sawToolResult bool
	for _, msg := range second.Messages {
		if msg.Role == llm.RoleTool && msg.ToolCallID == "c1" {
			sawToolResult = true
		}
	}
	assert.True(t, sawToolResult)
}

func TestRun_ToolErrorFedBackToModel(t *testing.T) {
	provider := mocks.NewScriptedProvider(
		mocks.ToolCallTurn(llm.ToolCall{ID: "c1", Name: "get_users"}),
		mocks.TextTurn("That lookup failed."),
	)
	ts := userToolset()
	ts.Handlers["get_users"] = func(json.RawMessage) (json.RawMessage, error) {
		return nil, errors.New("HTTP 500")
	}
	r, svc := newRunner(t, provider, ts)
	ctx := context.Background()
	_, err := svc.Create(ctx, "demo", "u1", "s1")
	require.NoError(t, err)

	ch, err := r.Run(ctx, "u1", "s1", llm.Message{Role: llm.RoleUser, Content: "list users"})
	require.NoError(t, err)
	events := collect(t, ch)

	require.Len(t, events, 4)
	assert.Contains(t, events[2].Message.Content, "Error:")
	assert.True(t, events[3].IsFinalResponse())
}

func TestRun_ProviderErrorDeliveredOnChannel(t *testing.T) {
	provider := mocks.NewScriptedProvider(mocks.ErrorTurn(errors.New("backend down")))
	r, svc := newRunner(t, provider, userToolset())
	ctx := context.Background()
	_, err := svc.Create(ctx, "demo", "u1", "s1")
	require.NoError(t, err)

	ch, err := r.Run(ctx, "u1", "s1", llm.Message{Role: llm.RoleUser, Content: "hi"})
	require.NoError(t, err)
	events := collect(t, ch)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.Error(t, last.Err)
	assert.Contains(t, last.Err.Error(), "backend down")
}

func TestRun_FailedRunDoesNotPoisonNextRun(t *testing.T) {
	provider := mocks.NewScriptedProvider(
		mocks.ErrorTurn(errors.New("backend down")),
		mocks.TextTurn("recovered"),
	)
	r, svc := newRunner(t, provider, userToolset())
	ctx := context.Background()
	_, err := svc.Create(ctx, "demo", "u1", "s1")
	require.NoError(t, err)

	ch, _ := r.Run(ctx, "u1", "s1", llm.Message{Role: llm.RoleUser, Content: "first"})
	events := collect(t, ch)
	require.Error(t, events[len(events)-1].Err)

	ch, err = r.Run(ctx, "u1", "s1", llm.Message{Role: llm.RoleUser, Content: "second"})
	require.NoError(t, err)
	events = collect(t, ch)
	last := events[len(events)-1]
	require.NoError(t, last.Err)
	assert.Equal(t, "recovered", last.Message.Content)
}

func TestRun_MaxIterations(t *testing.T) {
	// A provider that always wants another tool call must be cut off.
	provider := mocks.NewScriptedProvider(
		mocks.ToolCallTurn(llm.ToolCall{ID: "c1", Name: "get_users"}),
	)
	ag, err := agent.New(agent.Config{Name: "helper", Model: "m", Toolsets: []agent.Toolset{userToolset()}}, nil)
	require.NoError(t, err)
	svc := session.NewInMemoryService()
	r, err := New(Config{AppName: "demo", MaxIterations: 3}, ag, provider, svc, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Create(ctx, "demo", "u1", "s1")
	require.NoError(t, err)

	ch, err := r.Run(ctx, "u1", "s1", llm.Message{Role: llm.RoleUser, Content: "loop"})
	require.NoError(t, err)
	events := collect(t, ch)

	last := events[len(events)-1]
	require.Error(t, last.Err)
	assert.Contains(t, last.Err.Error(), "max iterations")
	assert.Equal(t, 3, provider.CallCount())
}

func TestRun_UnknownSession(t *testing.T) {
	provider := mocks.NewScriptedProvider(mocks.TextTurn("ok"))
	r, _ := newRunner(t, provider, userToolset())

	_, err := r.Run(context.Background(), "u1", "missing", llm.Message{Role: llm.RoleUser, Content: "hi"})
	require.ErrorIs(t, err, session.ErrNotFound)
}

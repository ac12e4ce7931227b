package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BaSui01/agentbridge/llm"
	"github.com/BaSui01/agentbridge/llm/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(baseURL string) *Provider {
	return New(providers.GeminiConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			APIKey:  "test-key",
			BaseURL: baseURL,
			Model:   "gemini-2.5-flash",
		},
	}, zap.NewNop())
}

func TestCompletion_TextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")

		var body geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.SystemInstruction)
		assert.Equal(t, "You are helpful.", body.SystemInstruction.Parts[0].Text)
		require.Len(t, body.Contents, 1)
		assert.Equal(t, "user", body.Contents[0].Role)

		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{
				Content:      geminiContent{Role: "model", Parts: []geminiPart{{Text: "Hello there."}}},
				FinishReason: "STOP",
			}},
			UsageMetadata: &geminiUsageMetadata{PromptTokenCount: 7, CandidatesTokenCount: 3, TotalTokenCount: 10},
		})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are helpful."},
			{Role: llm.RoleUser, Content: "Hi"},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hello there.", resp.Choices[0].Message.Content)
	assert.Equal(t, "STOP", resp.Choices[0].FinishReason)
	assert.Equal(t, 10, resp.Usage.TotalTokens)
	assert.Equal(t, "gemini", resp.Provider)
}

func TestCompletion_FunctionCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Tools, 1)
		require.Len(t, body.Tools[0].FunctionDeclarations, 1)
		assert.Equal(t, "list_users", body.Tools[0].FunctionDeclarations[0].Name)

		json.NewEncoder(w).Encode(geminiResponse{
			ResponseID: "resp-1",
			Candidates: []geminiCandidate{{
				Content: geminiContent{Role: "model", Parts: []geminiPart{{
					FunctionCall: &geminiFunctionCall{Name: "list_users", Args: map[string]any{"page": float64(2)}},
				}}},
			}},
		})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "list users page 2"}},
		Tools: []llm.ToolSchema{{
			Name:       "list_users",
			Parameters: json.RawMessage(`{"type":"object","properties":{"page":{"type":"integer"}}}`),
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	calls := resp.Choices[0].Message.ToolCalls
	require.Len(t, calls, 1)
	assert.Equal(t, "list_users", calls[0].Name)
	assert.JSONEq(t, `{"page":2}`, string(calls[0].Arguments))
	assert.NotEmpty(t, calls[0].ID)
}

func TestCompletion_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "API key not valid", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Hi"}},
	})
	require.Error(t, err)
	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, llm.ErrUnauthorized, lerr.Code)
	assert.False(t, lerr.Retryable)
}

func TestConvertContents_ToolResultRoles(t *testing.T) {
	system, contents := convertContents([]llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "call something"},
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{
			ID: "call_1", Name: "get_user", Arguments: json.RawMessage(`{"id":3}`),
		}}},
		{Role: llm.RoleTool, Name: "get_user", ToolCallID: "call_1", Content: `{"id":3,"email":"a@b.c"}`},
	})

	require.NotNil(t, system)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	// Assistant becomes "model" and carries the functionCall part.
	assert.Equal(t, "model", contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "get_user", contents[1].Parts[0].FunctionCall.Name)
	// Tool results travel back as user-role functionResponse parts.
	assert.Equal(t, "user", contents[2].Role)
	require.NotNil(t, contents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "get_user", contents[2].Parts[0].FunctionResponse.Name)
}

func TestConvertContents_NonJSONToolResultWrapped(t *testing.T) {
	_, contents := convertContents([]llm.Message{
		{Role: llm.RoleTool, Name: "read_file", ToolCallID: "call_1", Content: "plain text"},
	})
	require.Len(t, contents, 1)
	fr := contents[0].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, map[string]any{"result": "plain text"}, fr.Response)
}

func TestChooseModel(t *testing.T) {
	assert.Equal(t, "m1", chooseModel(&llm.ChatRequest{Model: "m1"}, "m2"))
	assert.Equal(t, "m2", chooseModel(&llm.ChatRequest{}, "m2"))
	assert.Equal(t, "gemini-2.5-flash", chooseModel(nil, ""))
}

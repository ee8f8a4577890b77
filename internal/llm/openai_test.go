package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1741780800,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 30, "completion_tokens": 8, "total_tokens": 38},
	}
}

func openAIServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func TestOpenAIProviderStructuredReply(t *testing.T) {
	var got map[string]any
	url := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"reply":"Great, tell me more."}`, "stop"))
	})

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: url})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{
		System: "You are an English tutor.",
		Messages: []Message{
			{Role: RoleUser, Content: "I like travel."},
			{Role: RoleAssistant, Content: "Where have you been?"},
			{Role: RoleUser, Content: "I went to Lisbon."},
		},
		Schema:    replySchema,
		MaxTokens: 200,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"reply":"Great, tell me more."}`, string(resp.Content))
	assert.Equal(t, 38, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
	format := got["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAIProviderTruncatedStructuredReply(t *testing.T) {
	url := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"reply":"Gre`, "length"))
	})
	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Schema: replySchema})
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
}

func TestOpenAIProviderRateLimit(t *testing.T) {
	url := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))
	})
	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestOpenRouterDefaults(t *testing.T) {
	_, err := NewOpenRouterProvider(ProviderConfig{})
	assert.Error(t, err)

	p, err := NewOpenRouterProvider(ProviderConfig{APIKey: "or-key", Model: "meta-llama/llama-3.1-8b-instruct"})
	require.NoError(t, err)
	assert.Equal(t, "meta-llama/llama-3.1-8b-instruct", p.ModelID())
}

func TestOpenRouterUsesBaseURL(t *testing.T) {
	url := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion("Hello there!", "stop"))
	})
	p, err := NewOpenRouterProvider(ProviderConfig{APIKey: "or-key", Model: "x/y", BaseURL: url})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", string(resp.Content))
}

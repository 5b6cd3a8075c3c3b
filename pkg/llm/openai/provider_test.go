package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/herald/pkg/llm"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	_, err := NewProvider(map[string]any{"chat_model": "gpt-4o-mini"})
	require.Error(t, err)
}

func TestChatSendsConfigAndOverrides(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "org-1", r.Header.Get("OpenAI-Organization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hello"}},
			},
			"usage": map[string]any{"prompt_tokens": 3, "completion_tokens": 5, "total_tokens": 8},
		})
	})

	p := NewProviderWithConfig(&Config{
		BaseURL:      srv.URL,
		APIKey:       "sk-test",
		ChatModel:    "gpt-4o-mini",
		Timeout:      5 * time.Second,
		Organization: "org-1",
		Temperature:  0.2,
	})

	resp, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
	}, llm.WithTemperature(0.7), llm.WithMaxTokens(64))
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 8, resp.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.InDelta(t, 0.7, captured["temperature"].(float64), 1e-9)
	assert.EqualValues(t, 64, captured["max_tokens"])
}

func TestChatStructuredSetsResponseFormat(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"title":"t"}`}},
			},
		})
	})

	p := NewProviderWithConfig(&Config{
		BaseURL:   srv.URL,
		APIKey:    "sk-test",
		ChatModel: "gpt-4o-mini",
		Timeout:   5 * time.Second,
	})

	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"title": map[string]any{"type": "string"}},
	}
	resp, err := p.ChatStructured(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "go"},
	}, "headline", schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"t"}`, resp.Content)

	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	js := format["json_schema"].(map[string]any)
	assert.Equal(t, "headline", js["name"])
	assert.Equal(t, true, js["strict"])
}

func TestChatUpstreamError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"nope"}}`, http.StatusUnauthorized)
	})

	p := NewProviderWithConfig(&Config{
		BaseURL:   srv.URL,
		APIKey:    "sk-bad",
		ChatModel: "gpt-4o-mini",
		Timeout:   5 * time.Second,
	})

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	require.Error(t, err)
}

func TestChatEmptyChoices(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	p := NewProviderWithConfig(&Config{
		BaseURL:   srv.URL,
		APIKey:    "sk-test",
		ChatModel: "gpt-4o-mini",
		Timeout:   5 * time.Second,
	})

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	require.Error(t, err)
}

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm"
	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

func TestProvider_Name(t *testing.T) {
	provider := NewProvider(Config{}, zap.NewNop())
	assert.Equal(t, "openai", provider.Name())
}

func TestProvider_Completion(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4o",
			"created": 1700000000,
			"choices": [{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"What do you think it could be?"}}],
			"usage": {"prompt_tokens":12,"completion_tokens":8,"total_tokens":20}
		}`))
	}))
	defer srv.Close()

	provider := NewProvider(Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())

	resp, err := provider.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "Guide, never answer directly."},
			{Role: llm.RoleUser, Parts: []llm.ContentPart{
				llm.TextPart("What is 2+2?"),
				llm.ImagePart("data:image/jpeg;base64,Zm9v"),
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "What do you think it could be?", resp.FirstChoiceText())
	assert.Equal(t, 20, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o", captured["model"])

	// Multimodal user message must be encoded as a content-part array.
	messages := captured["messages"].([]any)
	userMsg := messages[1].(map[string]any)
	parts := userMsg["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].(map[string]any)["type"])
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])

	// System message stays a plain string.
	sysMsg := messages[0].(map[string]any)
	assert.Equal(t, "Guide, never answer directly.", sysMsg["content"])
}

func TestProvider_CompletionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	provider := NewProvider(Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())

	_, err := provider.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrRateLimited, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestProvider_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	provider := NewProvider(Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())

	status, err := provider.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}

package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Embed(t *testing.T) {
	var captured openAIEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{
			"data":[{"index":0,"embedding":[0.1,0.2,0.3]}],
			"model":"text-embedding-3-small",
			"usage":{"prompt_tokens":3,"total_tokens":3}
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "key", BaseURL: srv.URL, Dimensions: 3})

	vec, err := EmbedQuery(context.Background(), p, "les fractions")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, []string{"les fractions"}, captured.Input)
	assert.Equal(t, "text-embedding-3-small", captured.Model)
	assert.Equal(t, 3, captured.Dimensions)
}

func TestOpenAIProvider_EmbedEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[],"model":"text-embedding-3-small","usage":{}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "key", BaseURL: srv.URL})

	_, err := EmbedQuery(context.Background(), p, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embeddings returned")
}

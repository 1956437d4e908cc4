package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHFProvider_ClassifyNested(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/unitary/toxic-bert", r.URL.Path)
		require.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[[{"label":"toxic","score":0.91},{"label":"insult","score":0.4}]]`))
	}))
	defer srv.Close()

	p := NewHFProvider(HFConfig{APIKey: "hf-key", BaseURL: srv.URL, Model: ModelToxicity})

	scores, err := p.Classify(context.Background(), "I hate you")
	require.NoError(t, err)
	require.Len(t, scores, 2)

	score, ok := ScoreFor(scores, "toxic")
	assert.True(t, ok)
	assert.InDelta(t, 0.91, score, 1e-9)
}

func TestHFProvider_ClassifyFlat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"joy","score":0.8},{"label":"sadness","score":0.1}]`))
	}))
	defer srv.Close()

	p := NewHFProvider(HFConfig{BaseURL: srv.URL, Model: ModelEmotion})

	scores, err := p.Classify(context.Background(), "this is great")
	require.NoError(t, err)
	assert.Equal(t, "joy", Top(scores))
}

func TestHFProvider_ClassifyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHFProvider(HFConfig{BaseURL: srv.URL, Model: ModelToxicity})

	_, err := p.Classify(context.Background(), "anything")
	assert.Error(t, err)
}

func TestTopAndScoreFor_Empty(t *testing.T) {
	assert.Equal(t, "", Top(nil))
	_, ok := ScoreFor(nil, "toxic")
	assert.False(t, ok)
}

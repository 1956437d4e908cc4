package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabsProvider_Synthesize(t *testing.T) {
	var captured elevenLabsTTSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/text-to-speech/EXAVITQu4vr4xnSDxMaL", r.URL.Path)
		require.Equal(t, "mp3_44100_128", r.URL.Query().Get("output_format"))
		require.Equal(t, "el-key", r.Header.Get("xi-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	p := NewElevenLabsProvider(ElevenLabsConfig{APIKey: "el-key", BaseURL: srv.URL})

	resp, err := p.Synthesize(context.Background(), &TTSRequest{
		Text:  "Well done! What comes next?",
		Voice: "EXAVITQu4vr4xnSDxMaL",
		Settings: &VoiceSettings{
			Stability:       0.7,
			SimilarityBoost: 0.8,
			Style:           0.9,
			UseSpeakerBoost: true,
		},
	})
	require.NoError(t, err)
	defer resp.Audio.Close()

	audio, err := io.ReadAll(resp.Audio)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(audio))
	assert.Equal(t, "mp3", resp.Format)
	assert.Equal(t, "eleven_multilingual_v2", captured.ModelID)
	require.NotNil(t, captured.VoiceSettings)
	assert.InDelta(t, 0.7, captured.VoiceSettings.Stability, 1e-9)
	assert.True(t, captured.VoiceSettings.UseSpeakerBoost)
}

func TestElevenLabsProvider_SynthesizeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer srv.Close()

	p := NewElevenLabsProvider(ElevenLabsConfig{APIKey: "bad", BaseURL: srv.URL})

	_, err := p.Synthesize(context.Background(), &TTSRequest{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestWhisperProvider_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "fr", r.FormValue("language"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "fake-wav", string(data))

		_, _ = w.Write([]byte(`{"text":"  Bonjour maître  "}`))
	}))
	defer srv.Close()

	p := NewWhisperProvider(WhisperConfig{APIKey: "oa-key", BaseURL: srv.URL})

	resp, err := p.Transcribe(context.Background(), &STTRequest{
		Audio:    bytes.NewReader([]byte("fake-wav")),
		Language: "fr",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour maître", resp.Text)
}

func TestWhisperProvider_TranscribeRequiresAudio(t *testing.T) {
	p := NewWhisperProvider(WhisperConfig{APIKey: "oa-key"})
	_, err := p.Transcribe(context.Background(), &STTRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio input is required")
}

func TestWhisperProvider_SupportedFormats(t *testing.T) {
	p := NewWhisperProvider(WhisperConfig{})
	assert.True(t, strings.Contains(strings.Join(p.SupportedFormats(), ","), "wav"))
}

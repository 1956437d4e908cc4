package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ElevenLabsProvider performs TTS using the ElevenLabs API.
type ElevenLabsProvider struct {
	cfg    ElevenLabsConfig
	client *http.Client
}

// NewElevenLabsProvider creates a new ElevenLabs TTS provider.
func NewElevenLabsProvider(cfg ElevenLabsConfig) *ElevenLabsProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.Model == "" {
		cfg.Model = "eleven_multilingual_v2"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &ElevenLabsProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

type elevenLabsTTSRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings *VoiceSettings `json:"voice_settings,omitempty"`
}

// Synthesize converts text to speech.
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, req *TTSRequest) (*TTSResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	voiceID := req.Voice
	if voiceID == "" {
		voiceID = p.cfg.VoiceID
	}
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM" // Rachel - default voice
	}

	body := elevenLabsTTSRequest{
		Text:          req.Text,
		ModelID:       model,
		VoiceSettings: req.Settings,
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", strings.TrimRight(p.cfg.BaseURL, "/"), voiceID)

	format := req.ResponseFormat
	if format == "" {
		format = "mp3_44100_128"
	}
	endpoint += "?output_format=" + format

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs error: status=%d body=%s", resp.StatusCode, string(errBody))
	}

	return &TTSResponse{
		Provider:  p.Name(),
		Model:     model,
		Audio:     resp.Body,
		Format:    "mp3",
		CharCount: len(req.Text),
		CreatedAt: time.Now(),
	}, nil
}

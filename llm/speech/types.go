package speech

import (
	"context"
	"io"
	"time"
)

// ============================================================
// Text-to-speech (TTS)
// ============================================================

// VoiceSettings tunes synthesis for a given voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarity_boost,omitempty"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// TTSRequest represents a text-to-speech request.
type TTSRequest struct {
	Text           string         `json:"text"`
	Model          string         `json:"model,omitempty"`
	Voice          string         `json:"voice,omitempty"`
	Settings       *VoiceSettings `json:"settings,omitempty"`
	ResponseFormat string         `json:"response_format,omitempty"` // e.g. mp3_44100_128
}

// TTSResponse represents the response to a TTS request. Audio is a stream
// owned by the caller; close it after draining.
type TTSResponse struct {
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Audio     io.ReadCloser `json:"-"`
	Format    string        `json:"format"`
	CharCount int           `json:"char_count,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// TTSProvider defines the TTS provider interface.
type TTSProvider interface {
	// Synthesize converts text to speech.
	Synthesize(ctx context.Context, req *TTSRequest) (*TTSResponse, error)

	// Name returns the provider name.
	Name() string
}

// ============================================================
// Speech-to-text (STT)
// ============================================================

// STTRequest represents a speech-to-text request.
type STTRequest struct {
	Audio    io.Reader `json:"-"`
	Model    string    `json:"model,omitempty"`
	Language string    `json:"language,omitempty"` // ISO-639-1 code
	Prompt   string    `json:"prompt,omitempty"`   // Context hint
}

// STTResponse represents the response to an STT request.
type STTResponse struct {
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Text      string        `json:"text"`
	Language  string        `json:"language,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// STTProvider defines the STT provider interface.
type STTProvider interface {
	// Transcribe converts speech to text.
	Transcribe(ctx context.Context, req *STTRequest) (*STTResponse, error)

	// Name returns the provider name.
	Name() string

	// SupportedFormats returns the accepted audio container formats.
	SupportedFormats() []string
}

package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/speech"
)

// MockTTS is a fake text-to-speech provider returning canned audio bytes.
type MockTTS struct {
	mu sync.Mutex

	audio []byte
	err   error
	calls []*speech.TTSRequest
}

// NewMockTTS returns a provider that yields a small fixed payload.
func NewMockTTS() *MockTTS {
	return &MockTTS{audio: []byte("mock-audio")}
}

// WithAudio sets the synthesized payload.
func (m *MockTTS) WithAudio(b []byte) *MockTTS {
	m.audio = b
	return m
}

// WithError makes every call fail with err.
func (m *MockTTS) WithError(err error) *MockTTS {
	m.err = err
	return m
}

// Calls returns the recorded synthesis requests.
func (m *MockTTS) Calls() []*speech.TTSRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*speech.TTSRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockTTS) Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	err := m.err
	audio := m.audio
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &speech.TTSResponse{
		Provider:  m.Name(),
		Audio:     io.NopCloser(bytes.NewReader(audio)),
		Format:    req.ResponseFormat,
		CharCount: len(req.Text),
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockTTS) Name() string { return "mock-tts" }

// MockSTT is a fake speech-to-text provider returning a canned transcript.
type MockSTT struct {
	mu sync.Mutex

	text  string
	err   error
	calls []*speech.STTRequest
}

// NewMockSTT returns a provider transcribing everything to "mock transcript".
func NewMockSTT() *MockSTT {
	return &MockSTT{text: "mock transcript"}
}

// WithText sets the transcript returned by every call.
func (m *MockSTT) WithText(text string) *MockSTT {
	m.text = text
	return m
}

// WithError makes every call fail with err.
func (m *MockSTT) WithError(err error) *MockSTT {
	m.err = err
	return m
}

// Calls returns the recorded transcription requests.
func (m *MockSTT) Calls() []*speech.STTRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*speech.STTRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockSTT) Transcribe(ctx context.Context, req *speech.STTRequest) (*speech.STTResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	err := m.err
	text := m.text
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &speech.STTResponse{
		Provider:  m.Name(),
		Text:      text,
		Language:  req.Language,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockSTT) Name() string { return "mock-stt" }

func (m *MockSTT) SupportedFormats() []string {
	return []string{"mp3", "wav", "webm", "m4a"}
}

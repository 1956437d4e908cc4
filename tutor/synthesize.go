package tutor

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/speech"
	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

// AudioMIMEType is the MIME type of every synthesized reply.
const AudioMIMEType = "audio/mp3"

const synthesisOutputFormat = "mp3_44100_128"

// Synthesizer renders tutor replies as speech using the voice profile of
// the session's language mode.
type Synthesizer struct {
	tts     speech.TTSProvider
	timeout time.Duration
	logger  *zap.Logger
}

// NewSynthesizer wraps a TTS provider with the per-call timeout.
func NewSynthesizer(tts speech.TTSProvider, timeouts CallTimeouts, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{tts: tts, timeout: timeouts.withDefaults().Synthesis, logger: logger}
}

// Synthesize converts text to an MP3 payload with the mode's voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, mode LanguageMode) ([]byte, error) {
	voice := mode.Voice()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.tts.Synthesize(cctx, &speech.TTSRequest{
		Text:           text,
		Voice:          voice.VoiceID,
		Settings:       voice.Settings,
		ResponseFormat: synthesisOutputFormat,
	})
	if err != nil {
		return nil, types.NewError(types.ErrSynthesisFailed, "speech synthesis failed").
			WithCause(err).WithHTTPStatus(502)
	}
	defer resp.Audio.Close()

	audio, err := io.ReadAll(resp.Audio)
	if err != nil {
		return nil, types.NewError(types.ErrSynthesisFailed, "reading synthesized audio failed").
			WithCause(err).WithHTTPStatus(502)
	}

	s.logger.Debug("reply synthesized",
		zap.String("voice", voice.VoiceID),
		zap.Int("bytes", len(audio)),
		zap.Duration("latency", time.Since(start)))
	return audio, nil
}

package tutor

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/speech"
	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

// RawTurn is the learner input as received from the transport layer,
// before any normalization.
type RawTurn struct {
	Text  string
	Audio []byte
	Image []byte
}

// Empty reports whether the turn carries no usable input at all.
func (t RawTurn) Empty() bool {
	return strings.TrimSpace(t.Text) == "" && len(t.Audio) == 0 && len(t.Image) == 0
}

// NormalizedTurn is the canonical pipeline input: plain text (possibly
// empty) plus an optional inlined image.
type NormalizedTurn struct {
	Text         string
	ImageDataURI string
}

// Normalizer converts raw multimodal input into the pipeline's canonical
// form: audio is transcribed, images are inlined as data URIs.
type Normalizer struct {
	stt     speech.STTProvider
	timeout CallTimeouts
	logger  *zap.Logger
}

// NewNormalizer builds a normalizer. stt may be nil, in which case audio
// input degrades to an empty transcript.
func NewNormalizer(stt speech.STTProvider, timeouts CallTimeouts, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{stt: stt, timeout: timeouts.withDefaults(), logger: logger}
}

// Normalize produces the pipeline input for one turn.
//
// When audio is present it takes precedence over any typed text: the
// transcript becomes the turn text. A transcription failure is soft and
// yields an empty transcript, so an attached image can still carry the
// turn. A turn that ends up with neither text nor image is rejected.
func (n *Normalizer) Normalize(ctx context.Context, raw RawTurn, mode LanguageMode) (NormalizedTurn, error) {
	out := NormalizedTurn{Text: raw.Text}

	if len(raw.Audio) > 0 {
		out.Text = n.transcribe(ctx, raw.Audio, mode)
	}

	if len(raw.Image) > 0 {
		out.ImageDataURI = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw.Image)
	}

	if strings.TrimSpace(out.Text) == "" && out.ImageDataURI == "" {
		return NormalizedTurn{}, types.NewError(types.ErrInvalidInput, "no valid input provided").WithHTTPStatus(400)
	}
	return out, nil
}

func (n *Normalizer) transcribe(ctx context.Context, audio []byte, mode LanguageMode) string {
	if n.stt == nil {
		n.logger.Warn("no transcriber configured, dropping audio input")
		return ""
	}
	cctx, cancel := context.WithTimeout(ctx, n.timeout.Transcription)
	defer cancel()

	resp, err := n.stt.Transcribe(cctx, &speech.STTRequest{
		Audio:    bytes.NewReader(audio),
		Language: mode.TranscriptionHint(),
	})
	if err != nil {
		n.logger.Warn("transcription failed, continuing without transcript", zap.Error(err))
		return ""
	}
	return resp.Text
}

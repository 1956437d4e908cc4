package tutor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

// MetricsRecorder receives interaction outcomes. Implementations must be
// safe for concurrent use; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordInteraction(outcome string, d time.Duration)
	RecordDegraded(service string)
}

// Interaction outcomes reported to the metrics recorder.
const (
	OutcomeAnswered = "answered"
	OutcomeBlocked  = "blocked"
	OutcomeFailed   = "failed"
)

// InteractionResult is the full outcome of one learner turn: the tutor's
// text plus its spoken rendering.
type InteractionResult struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Blocked   bool   `json:"blocked"`
	Audio     []byte `json:"-"`
	AudioMIME string `json:"audio_mime"`
}

// InteractionService ties the registry, the normalizer and the
// synthesizer together into the single entry point the API layer calls.
type InteractionService struct {
	registry   *Registry
	normalizer *Normalizer
	synth      *Synthesizer
	metrics    MetricsRecorder
	logger     *zap.Logger
}

// NewInteractionService wires the interaction flow. metrics may be nil.
func NewInteractionService(registry *Registry, normalizer *Normalizer, synth *Synthesizer, metrics MetricsRecorder, logger *zap.Logger) *InteractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionService{
		registry:   registry,
		normalizer: normalizer,
		synth:      synth,
		metrics:    metrics,
		logger:     logger,
	}
}

// Registry exposes the session registry for session creation and health
// reporting.
func (s *InteractionService) Registry() *Registry { return s.registry }

// Interact runs one full turn: normalize the input, run the session's
// pipeline and synthesize the reply. The session lock is held across the
// whole turn, so turns within a session are strictly ordered and the
// history gains exactly one complete exchange per successful turn.
func (s *InteractionService) Interact(ctx context.Context, sessionID string, raw RawTurn) (*InteractionResult, error) {
	start := time.Now()

	// Reject obviously empty turns before touching the registry.
	if raw.Empty() {
		s.record(OutcomeFailed, start)
		return nil, types.NewError(types.ErrInvalidInput, "no valid input provided").WithHTTPStatus(400)
	}

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		s.record(OutcomeFailed, start)
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	turn, err := s.normalizer.Normalize(ctx, raw, sess.mode)
	if err != nil {
		s.record(OutcomeFailed, start)
		return nil, err
	}

	res, err := sess.pipeline.Run(ctx, sess, turn)
	if err != nil {
		s.record(OutcomeFailed, start)
		return nil, err
	}
	for _, svc := range res.Degraded {
		if s.metrics != nil {
			s.metrics.RecordDegraded(svc)
		}
	}

	audio, err := s.synth.Synthesize(ctx, res.Reply, sess.mode)
	if err != nil {
		s.record(OutcomeFailed, start)
		return nil, err
	}

	outcome := OutcomeAnswered
	if res.Blocked {
		outcome = OutcomeBlocked
	}
	s.record(outcome, start)

	s.logger.Info("interaction completed",
		zap.String("session_id", sessionID),
		zap.String("outcome", outcome),
		zap.Strings("degraded", res.Degraded),
		zap.Duration("latency", time.Since(start)))

	return &InteractionResult{
		SessionID: sessionID,
		Text:      res.Reply,
		Blocked:   res.Blocked,
		Audio:     audio,
		AudioMIME: AudioMIMEType,
	}, nil
}

func (s *InteractionService) record(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordInteraction(outcome, time.Since(start))
	}
}

package tutor

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm"
	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/classify"
	"github.com/EllouziMedAmin/Pedagogical-RAG/memory"
	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

const (
	// toxicBlockThreshold blocks a turn when the "toxic" label scores
	// strictly above it. A score of exactly 0.5 passes.
	toxicBlockThreshold = 0.5

	// affectNeutral is the sentinel affect used when there is no text to
	// classify or the classifier is unavailable.
	affectNeutral = "neutral"

	// toxicLabel is the label the toxicity model emits for toxic input.
	toxicLabel = "toxic"

	// memoryTopK is how many knowledge entries are recalled per turn.
	memoryTopK = 3
)

// Pipeline stages. A turn always enters at the moderation gate and ends
// either blocked or after response generation.
type stage int

const (
	stageModerationGate stage = iota
	stageAffectAndMemory
	stageGeneration
	stageBlocked
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageModerationGate:
		return "moderation_gate"
	case stageAffectAndMemory:
		return "affect_and_memory"
	case stageGeneration:
		return "generation"
	case stageBlocked:
		return "blocked"
	default:
		return "done"
	}
}

// TurnResult is the outcome of one pipeline run.
type TurnResult struct {
	// Reply is the tutor's text answer, or the fixed refusal when
	// Blocked is set.
	Reply string
	// Blocked reports that the moderation gate rejected the turn. A
	// blocked turn is not appended to the history.
	Blocked bool
	// Affect is the emotion label fed into the prompt.
	Affect string
	// Degraded lists the optional services that failed during the turn
	// (moderation, affect, memory). Empty on a clean run.
	Degraded []string
}

// turnState is the mutable state threaded through the stages of one run.
type turnState struct {
	sess *Session
	turn NormalizedTurn

	affect   string
	context  string
	degraded []string

	reply   string
	blocked bool
	err     error
}

// DialoguePipeline runs the two-stage dialogue flow for one session:
// a moderation gate, then affect analysis plus memory recall feeding
// response generation.
//
// Optional services fail open: a moderation outage admits the turn, a
// classifier or memory outage degrades to the neutral affect or an empty
// context. Only a generation failure aborts the turn.
type DialoguePipeline struct {
	profile  LearnerProfile
	mode     LanguageMode
	services Services
	composer *PromptComposer
	timeouts CallTimeouts
	logger   *zap.Logger
}

func newDialoguePipeline(profile LearnerProfile, mode LanguageMode, services Services, composer *PromptComposer, timeouts CallTimeouts, logger *zap.Logger) *DialoguePipeline {
	return &DialoguePipeline{
		profile:  profile,
		mode:     mode,
		services: services,
		composer: composer,
		timeouts: timeouts.withDefaults(),
		logger:   logger.With(zap.String("component", "pipeline")),
	}
}

// Run executes one turn. The caller holds the session lock for the whole
// call, so the history read at generation time and the append afterwards
// are atomic with respect to other turns.
func (p *DialoguePipeline) Run(ctx context.Context, sess *Session, turn NormalizedTurn) (*TurnResult, error) {
	st := &turnState{sess: sess, turn: turn, affect: affectNeutral}

	for s := stageModerationGate; s != stageDone; {
		switch s {
		case stageModerationGate:
			s = p.runModerationGate(ctx, st)
		case stageAffectAndMemory:
			s = p.runAffectAndMemory(ctx, st)
		case stageGeneration:
			s = p.runGeneration(ctx, st)
		case stageBlocked:
			st.reply = p.mode.RefusalMessage()
			st.blocked = true
			s = stageDone
		}
	}
	if st.err != nil {
		return nil, st.err
	}
	return &TurnResult{
		Reply:    st.reply,
		Blocked:  st.blocked,
		Affect:   st.affect,
		Degraded: st.degraded,
	}, nil
}

// runModerationGate screens the turn text. Image-only turns skip the
// gate, and a moderation outage admits the turn rather than holding the
// learner hostage to an auxiliary service.
func (p *DialoguePipeline) runModerationGate(ctx context.Context, st *turnState) stage {
	text := strings.TrimSpace(st.turn.Text)
	if text == "" || p.services.Toxicity == nil {
		if text != "" && p.services.Toxicity == nil {
			st.degraded = append(st.degraded, "moderation")
		}
		return stageAffectAndMemory
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeouts.Moderation)
	scores, err := p.services.Toxicity.Classify(cctx, text)
	cancel()
	if err != nil {
		p.logger.Warn("toxicity check failed, admitting turn", zap.Error(err))
		st.degraded = append(st.degraded, "moderation")
		return stageAffectAndMemory
	}
	if score, ok := classify.ScoreFor(scores, toxicLabel); ok && score > toxicBlockThreshold {
		p.logger.Info("turn blocked by moderation gate",
			zap.String("session_id", st.sess.id),
			zap.Float64("toxic_score", score))
		return stageBlocked
	}
	return stageAffectAndMemory
}

// runAffectAndMemory resolves the emotion label and the knowledge
// context. Both degrade independently: the affect falls back to the
// neutral sentinel and the context to an empty block.
func (p *DialoguePipeline) runAffectAndMemory(ctx context.Context, st *turnState) stage {
	text := strings.TrimSpace(st.turn.Text)
	if text == "" {
		return stageGeneration
	}

	if p.services.Affect != nil {
		cctx, cancel := context.WithTimeout(ctx, p.timeouts.Affect)
		scores, err := p.services.Affect.Classify(cctx, text)
		cancel()
		switch {
		case err != nil:
			p.logger.Warn("affect analysis failed, using neutral", zap.Error(err))
			st.degraded = append(st.degraded, "affect")
		case classify.Top(scores) != "":
			st.affect = classify.Top(scores)
		}
	} else {
		st.degraded = append(st.degraded, "affect")
	}

	if p.services.Memory != nil {
		cctx, cancel := context.WithTimeout(ctx, p.timeouts.Memory)
		entries, err := p.services.Memory.Query(cctx, text, memoryTopK)
		cancel()
		if err != nil {
			p.logger.Warn("memory recall failed, continuing without context", zap.Error(err))
			st.degraded = append(st.degraded, "memory")
		} else {
			st.context = memory.JoinContext(entries)
		}
	} else {
		st.degraded = append(st.degraded, "memory")
	}
	return stageGeneration
}

// runGeneration composes the prompt, calls the model and appends the
// completed exchange to the history. This is the only stage whose
// failure aborts the turn.
func (p *DialoguePipeline) runGeneration(ctx context.Context, st *turnState) stage {
	system := p.composer.Compose(p.profile, p.mode, PromptInputs{
		Affect:       st.affect,
		LastQuestion: st.sess.lastAssistantReply(),
		Context:      st.context,
	})

	var parts []llm.ContentPart
	if text := strings.TrimSpace(st.turn.Text); text != "" {
		parts = append(parts, llm.TextPart(text))
	}
	if st.turn.ImageDataURI != "" {
		parts = append(parts, llm.ImagePart(st.turn.ImageDataURI))
	}

	req := &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Parts: parts},
		},
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeouts.Generation)
	start := time.Now()
	resp, err := p.services.LLM.Completion(cctx, req)
	cancel()
	if err != nil {
		st.err = types.NewError(types.ErrGenerationFailed, "response generation failed").
			WithCause(err).WithHTTPStatus(502)
		return stageDone
	}
	reply := resp.FirstChoiceText()
	if strings.TrimSpace(reply) == "" {
		st.err = types.NewError(types.ErrGenerationFailed, "model returned an empty reply").WithHTTPStatus(502)
		return stageDone
	}

	p.logger.Debug("turn generated",
		zap.String("session_id", st.sess.id),
		zap.String("affect", st.affect),
		zap.Duration("latency", time.Since(start)))

	st.reply = reply
	st.sess.appendTurn(ConversationTurn{
		LearnerText:    st.turn.Text,
		HasImage:       st.turn.ImageDataURI != "",
		AssistantReply: reply,
	})
	return stageDone
}

package tutor

import (
	"time"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm"
	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/classify"
	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/speech"
	"github.com/EllouziMedAmin/Pedagogical-RAG/memory"
	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

// Services bundles the external clients a session depends on.
//
// The generation model and the synthesizer are hard requirements: without
// them a session cannot produce a reply. Everything else is optional and
// simply puts the pipeline into its degraded path when absent, the same
// way a mid-flight outage of that service would.
type Services struct {
	LLM         llm.Provider
	Toxicity    classify.TextClassifier
	Affect      classify.TextClassifier
	Memory      memory.Store
	Transcriber speech.STTProvider
	Synthesizer speech.TTSProvider

	// MemoryForSubject, when set, supplies a per-subject knowledge store
	// at session creation and takes precedence over Memory. This mirrors
	// the one-collection-per-subject layout of the knowledge base.
	MemoryForSubject func(subject string) memory.Store
}

// forSubject resolves the memory store for a session's subject.
func (s Services) forSubject(subject string) Services {
	if s.MemoryForSubject != nil {
		s.Memory = s.MemoryForSubject(subject)
	}
	return s
}

func (s Services) validate() error {
	if s.LLM == nil {
		return types.NewError(types.ErrProvisioning, "generation model is not configured")
	}
	if s.Synthesizer == nil {
		return types.NewError(types.ErrProvisioning, "speech synthesizer is not configured")
	}
	return nil
}

// CallTimeouts caps each external call made during a turn so that one
// slow dependency cannot stall the whole interaction.
type CallTimeouts struct {
	Moderation    time.Duration
	Affect        time.Duration
	Memory        time.Duration
	Generation    time.Duration
	Transcription time.Duration
	Synthesis     time.Duration
}

// DefaultCallTimeouts returns the production defaults. Generation and
// speech calls get more headroom than the small classifier calls.
func DefaultCallTimeouts() CallTimeouts {
	return CallTimeouts{
		Moderation:    5 * time.Second,
		Affect:        5 * time.Second,
		Memory:        5 * time.Second,
		Generation:    60 * time.Second,
		Transcription: 30 * time.Second,
		Synthesis:     30 * time.Second,
	}
}

func (t CallTimeouts) withDefaults() CallTimeouts {
	d := DefaultCallTimeouts()
	if t.Moderation <= 0 {
		t.Moderation = d.Moderation
	}
	if t.Affect <= 0 {
		t.Affect = d.Affect
	}
	if t.Memory <= 0 {
		t.Memory = d.Memory
	}
	if t.Generation <= 0 {
		t.Generation = d.Generation
	}
	if t.Transcription <= 0 {
		t.Transcription = d.Transcription
	}
	if t.Synthesis <= 0 {
		t.Synthesis = d.Synthesis
	}
	return t
}

package tutor

import (
	"strings"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/speech"
	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

// LearnerProfile describes one learner. It is captured at session creation
// and stays immutable for the lifetime of the session.
type LearnerProfile struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Level   string `json:"level"`
	Subject string `json:"subject"`
}

// Validate rejects profiles that cannot produce a coherent tutoring prompt.
func (p LearnerProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return types.NewError(types.ErrInvalidInput, "learner name is required")
	}
	if strings.TrimSpace(p.Subject) == "" {
		return types.NewError(types.ErrInvalidInput, "subject is required")
	}
	if p.Age < 0 {
		return types.NewError(types.ErrInvalidInput, "age must not be negative")
	}
	return nil
}

// LanguageMode selects the tutoring language. It is derived from the
// subject once at session creation and drives the prompt template, the
// transcription hint, the refusal message and the synthesis voice.
type LanguageMode int

const (
	// ModeFrench is the default: a French-speaking tutor for general
	// subjects (maths, histoire, sciences, ...).
	ModeFrench LanguageMode = iota
	// ModeEnglish is the language-teacher mode used when the subject is
	// English itself: the tutor speaks simple English throughout.
	ModeEnglish
)

// DeriveLanguageMode maps a subject to its tutoring language. Only the
// English subject (in either language) flips the tutor into English mode.
func DeriveLanguageMode(subject string) LanguageMode {
	switch strings.ToLower(strings.TrimSpace(subject)) {
	case "anglais", "english":
		return ModeEnglish
	}
	return ModeFrench
}

func (m LanguageMode) String() string {
	if m == ModeEnglish {
		return "english"
	}
	return "french"
}

// TranscriptionHint returns the ISO language code passed to the speech
// recognizer so that it does not have to guess the spoken language.
func (m LanguageMode) TranscriptionHint() string {
	if m == ModeEnglish {
		return "en"
	}
	return "fr"
}

// RefusalMessage is the fixed reply returned when the moderation gate
// blocks a turn. It never reaches the generation model.
func (m LanguageMode) RefusalMessage() string {
	if m == ModeEnglish {
		return "I prefer we keep things polite. Could you rephrase?"
	}
	return "🤖 Je préfère qu'on reste poli. Peux-tu reformuler ?"
}

// VoiceProfile bundles the synthesis voice and its tuning for a language
// mode. The English voice carries explicit settings; the French voice
// uses the vendor defaults.
type VoiceProfile struct {
	VoiceID  string
	Settings *speech.VoiceSettings
}

// Voice returns the synthesis profile for the mode.
func (m LanguageMode) Voice() VoiceProfile {
	if m == ModeEnglish {
		return VoiceProfile{
			VoiceID: "EXAVITQu4vr4xnSDxMaL",
			Settings: &speech.VoiceSettings{
				Stability:       0.7,
				SimilarityBoost: 0.8,
				Style:           0.9,
				UseSpeakerBoost: true,
			},
		}
	}
	return VoiceProfile{VoiceID: "ViSNE020Z1wEV4uZomv5"}
}

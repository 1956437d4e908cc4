package tutor

import (
	"sync"
	"time"
)

// ConversationTurn is one completed learner/tutor exchange. A turn is
// appended to the history only after the tutor reply has been generated,
// so the history never contains a half-finished exchange.
type ConversationTurn struct {
	LearnerText    string    `json:"learner_text"`
	HasImage       bool      `json:"has_image"`
	AssistantReply string    `json:"assistant_reply"`
	At             time.Time `json:"at"`
}

// Session is the per-learner conversation state. All mutation happens
// under mu, which the interaction service holds for the whole duration
// of a turn.
type Session struct {
	id        string
	profile   LearnerProfile
	mode      LanguageMode
	pipeline  *DialoguePipeline
	createdAt time.Time

	mu      sync.Mutex
	history []ConversationTurn
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Profile returns the immutable learner profile.
func (s *Session) Profile() LearnerProfile { return s.profile }

// Mode returns the tutoring language derived from the profile subject.
func (s *Session) Mode() LanguageMode { return s.mode }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// History returns a copy of the conversation so far. The caller must not
// hold the session lock.
func (s *Session) History() []ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ConversationTurn, len(s.history))
	copy(out, s.history)
	return out
}

// lastAssistantReply returns the tutor reply of the previous turn, used
// as the "last question" slot of the prompt. Empty on the first turn.
// Caller holds s.mu.
func (s *Session) lastAssistantReply() string {
	if len(s.history) == 0 {
		return ""
	}
	return s.history[len(s.history)-1].AssistantReply
}

// appendTurn records one completed exchange. Caller holds s.mu.
func (s *Session) appendTurn(t ConversationTurn) {
	if t.At.IsZero() {
		t.At = time.Now()
	}
	s.history = append(s.history, t)
}

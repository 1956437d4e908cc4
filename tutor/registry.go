package tutor

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

// RegistryConfig tunes the session registry.
type RegistryConfig struct {
	// MaxSessions bounds the number of live sessions. Zero means
	// unbounded. When the bound is reached, Create fails instead of
	// evicting an active learner.
	MaxSessions int
	Timeouts    CallTimeouts
}

// Registry owns every live session. Lookups take a read lock so
// concurrent interactions on distinct sessions never serialize here.
type Registry struct {
	services Services
	cfg      RegistryConfig
	composer *PromptComposer
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. The composer may be shared by
// every session because it is stateless.
func NewRegistry(services Services, composer *PromptComposer, cfg RegistryConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if composer == nil {
		composer = NewPromptComposer(nil)
	}
	cfg.Timeouts = cfg.Timeouts.withDefaults()
	return &Registry{
		services: services,
		cfg:      cfg,
		composer: composer,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create validates the profile and the configured services, builds the
// session's pipeline and registers the session under a fresh identifier.
func (r *Registry) Create(profile LearnerProfile) (*Session, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := r.services.validate(); err != nil {
		return nil, err
	}

	mode := DeriveLanguageMode(profile.Subject)
	sess := &Session{
		id:        uuid.NewString(),
		profile:   profile,
		mode:      mode,
		createdAt: time.Now(),
	}
	sess.pipeline = newDialoguePipeline(profile, mode, r.services.forSubject(profile.Subject), r.composer, r.cfg.Timeouts, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions {
		return nil, types.NewError(types.ErrProvisioning, "session capacity reached").WithHTTPStatus(503)
	}
	r.sessions[sess.id] = sess

	r.logger.Info("session created",
		zap.String("session_id", sess.id),
		zap.String("subject", profile.Subject),
		zap.String("mode", mode.String()))
	return sess, nil
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, types.NewError(types.ErrSessionNotFound, "unknown session: "+id).WithHTTPStatus(404)
	}
	return sess, nil
}

// Remove drops a session from the registry. Removing an unknown id is a
// no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Count returns the number of live sessions, used by the health endpoint.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

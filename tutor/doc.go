// Package tutor implements the per-learner dialogue core: the session
// registry, the two-stage dialogue pipeline (moderation gate, then affect
// analysis plus memory recall feeding response generation), the system
// prompt composer, the multimodal input normalizer and the speech
// synthesizer.
//
// A session is created once per learner from a profile and keeps an
// append-only conversation history. Every interaction runs under the
// session's own lock, so turns within one session are strictly ordered
// while distinct sessions proceed in parallel.
package tutor

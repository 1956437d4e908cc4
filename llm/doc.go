// Package llm defines the unified chat-completion contract used by the
// tutoring pipeline: message and request/response types with multimodal
// content parts, and the Provider interface implemented by concrete
// providers under llm/providers.
package llm

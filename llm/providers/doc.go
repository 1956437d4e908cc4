// Package providers contains shared helpers for concrete LLM provider
// implementations: OpenAI-compatible wire types, HTTP error mapping, and
// model selection. Concrete providers live in subpackages.
package providers

package llm

import "context"

// Provider is the unified chat-completion interface the pipeline depends on.
type Provider interface {
	// Completion performs a synchronous chat request and returns the full
	// response.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// HealthCheck performs a lightweight reachability probe.
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Name returns the provider's unique identifier.
	Name() string
}

package memory

import (
	"context"
	"strings"
)

// Document is one unit of teaching material held in long-term memory.
type Document struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Subject string  `json:"subject,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// Store is the long-term memory contract the pipeline depends on.
type Store interface {
	// Add indexes documents for later retrieval.
	Add(ctx context.Context, docs []Document) error

	// Query returns the content of the k most relevant documents for the
	// query text, most relevant first. An empty result is not an error.
	Query(ctx context.Context, query string, k int) ([]string, error)

	// Name returns the store implementation name.
	Name() string
}

// JoinContext concatenates retrieved entries into the single context block
// the prompt composer consumes.
func JoinContext(entries []string) string {
	return strings.Join(entries, "\n")
}

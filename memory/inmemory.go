package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/embedding"
)

// InMemoryStore is a brute-force cosine-similarity store for tests and
// single-node demos.
type InMemoryStore struct {
	embedder embedding.Provider
	logger   *zap.Logger

	mu      sync.RWMutex
	docs    []Document
	vectors [][]float64
}

// NewInMemoryStore creates an in-memory similarity store.
func NewInMemoryStore(embedder embedding.Provider, logger *zap.Logger) *InMemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryStore{
		embedder: embedder,
		logger:   logger.With(zap.String("component", "inmemory_memory")),
	}
}

func (s *InMemoryStore) Name() string { return "inmemory" }

// Add embeds and stores documents.
func (s *InMemoryStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	embedded, err := s.embedder.Embed(ctx, &embedding.EmbeddingRequest{Input: texts})
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(embedded.Embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: got=%d want=%d", len(embedded.Embeddings), len(docs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range docs {
		s.docs = append(s.docs, doc)
		s.vectors = append(s.vectors, embedded.Embeddings[i].Embedding)
	}

	s.logger.Debug("documents added", zap.Int("count", len(docs)), zap.Int("total", len(s.docs)))
	return nil
}

// Query returns the k most similar document contents.
func (s *InMemoryStore) Query(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 || query == "" {
		return nil, nil
	}

	vector, err := embedding.EmbedQuery(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		content string
		score   float64
	}
	results := make([]scored, 0, len(s.docs))
	for i, doc := range s.docs {
		results = append(results, scored{content: doc.Content, score: cosine(vector, s.vectors[i])})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if k > len(results) {
		k = len(results)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = results[i].content
	}
	return out, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

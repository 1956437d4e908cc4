package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/embedding"
)

// QdrantConfig configures the Qdrant-backed memory store.
type QdrantConfig struct {
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	APIKey     string        `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Collection string        `json:"collection" yaml:"collection"`
	Distance   string        `json:"distance,omitempty" yaml:"distance,omitempty"` // Cosine (default), Dot, Euclid
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// CollectionForSubject derives the per-subject knowledge collection name.
func CollectionForSubject(subject string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(subject)), " ", "_")
	return slug + "_knowledge"
}

// QdrantStore implements Store using Qdrant's REST API, vectorizing text
// through an embedding provider.
type QdrantStore struct {
	cfg      QdrantConfig
	embedder embedding.Provider

	baseURL string
	client  *http.Client
	logger  *zap.Logger

	ensureOnce sync.Once
	ensureErr  error
}

// NewQdrantStore creates a Qdrant-backed memory store.
func NewQdrantStore(cfg QdrantConfig, embedder embedding.Provider, logger *zap.Logger) *QdrantStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:6333"
	}
	if cfg.Distance == "" {
		cfg.Distance = "Cosine"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &QdrantStore{
		cfg:      cfg,
		embedder: embedder,
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger.With(zap.String("component", "qdrant_memory")),
	}
}

func (s *QdrantStore) Name() string { return "qdrant/" + s.cfg.Collection }

// pointID derives a stable Qdrant UUID from a document ID.
func pointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String()
}

func (s *QdrantStore) applyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}
}

func (s *QdrantStore) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	s.applyHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant request failed: method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *QdrantStore) ensureCollection(ctx context.Context, vectorSize int) error {
	s.ensureOnce.Do(func() {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     vectorSize,
				"distance": s.cfg.Distance,
			},
		}

		endpoint := fmt.Sprintf("%s/collections/%s", s.baseURL, url.PathEscape(s.cfg.Collection))
		reqBody, _ := json.Marshal(body)
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(reqBody))
		if err != nil {
			s.ensureErr = err
			return
		}
		s.applyHeaders(req)

		resp, err := s.client.Do(req)
		if err != nil {
			s.ensureErr = err
			return
		}
		defer resp.Body.Close()

		// Qdrant returns 409 if the collection already exists.
		if resp.StatusCode == http.StatusConflict {
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(resp.Body)
			s.ensureErr = fmt.Errorf("qdrant create collection failed: status=%d body=%s", resp.StatusCode, string(raw))
		}
	})
	return s.ensureErr
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Add embeds and upserts documents into the collection.
func (s *QdrantStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if strings.TrimSpace(s.cfg.Collection) == "" {
		return fmt.Errorf("qdrant collection is required")
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document[%d] has empty id", i)
		}
		texts[i] = doc.Content
	}

	embedded, err := s.embedder.Embed(ctx, &embedding.EmbeddingRequest{Input: texts})
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(embedded.Embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: got=%d want=%d", len(embedded.Embeddings), len(docs))
	}

	if err := s.ensureCollection(ctx, len(embedded.Embeddings[0].Embedding)); err != nil {
		return err
	}

	points := make([]qdrantPoint, len(docs))
	for i, doc := range docs {
		points[i] = qdrantPoint{
			ID:     pointID(doc.ID),
			Vector: embedded.Embeddings[i].Embedding,
			Payload: map[string]any{
				"doc_id":  doc.ID,
				"content": doc.Content,
				"subject": doc.Subject,
			},
		}
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(s.cfg.Collection))
	var resp any
	if err := s.doJSON(ctx, http.MethodPut, path, map[string]any{"points": points}, &resp); err != nil {
		return err
	}

	s.logger.Debug("qdrant upsert completed", zap.Int("count", len(docs)))
	return nil
}

// Query embeds the query text and returns the content of the k most similar
// documents, most similar first.
func (s *QdrantStore) Query(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if strings.TrimSpace(s.cfg.Collection) == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}

	vector, err := embedding.EmbedQuery(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	req := struct {
		Vector      []float64 `json:"vector"`
		Limit       int       `json:"limit"`
		WithPayload bool      `json:"with_payload"`
	}{
		Vector:      vector,
		Limit:       k,
		WithPayload: true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(s.cfg.Collection))
	if err := s.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(resp.Result))
	for _, r := range resp.Result {
		if content, ok := r.Payload["content"].(string); ok && content != "" {
			out = append(out, content)
		}
	}
	return out, nil
}

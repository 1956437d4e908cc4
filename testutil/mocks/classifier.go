package mocks

import (
	"context"
	"sync"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/classify"
)

// MockClassifier is a fake text classifier returning canned label scores.
type MockClassifier struct {
	mu sync.Mutex

	scores []classify.LabelScore
	err    error
	inputs []string
}

// NewMockClassifier returns a classifier with no labels configured.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// WithScores sets the labels returned by every call.
func (m *MockClassifier) WithScores(scores ...classify.LabelScore) *MockClassifier {
	m.scores = scores
	return m
}

// WithLabel is shorthand for a single-label result.
func (m *MockClassifier) WithLabel(label string, score float64) *MockClassifier {
	return m.WithScores(classify.LabelScore{Label: label, Score: score})
}

// WithError makes every call fail with err.
func (m *MockClassifier) WithError(err error) *MockClassifier {
	m.err = err
	return m
}

// Inputs returns the texts classified so far.
func (m *MockClassifier) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.inputs))
	copy(out, m.inputs)
	return out
}

func (m *MockClassifier) Classify(ctx context.Context, text string) ([]classify.LabelScore, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, text)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.scores, nil
}

func (m *MockClassifier) Name() string { return "mock-classifier" }

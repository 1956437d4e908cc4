package mocks

import (
	"context"
	"sync"

	"github.com/EllouziMedAmin/Pedagogical-RAG/memory"
)

// MockStore is a fake long-term memory store returning canned context
// entries.
type MockStore struct {
	mu sync.Mutex

	entries []string
	err     error
	queries []string
	added   []memory.Document
}

// NewMockStore returns an empty store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// WithEntries sets the entries returned by every Query.
func (m *MockStore) WithEntries(entries ...string) *MockStore {
	m.entries = entries
	return m
}

// WithError makes every call fail with err.
func (m *MockStore) WithError(err error) *MockStore {
	m.err = err
	return m
}

// Queries returns the query texts seen so far.
func (m *MockStore) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

// Added returns every document passed to Add.
func (m *MockStore) Added() []memory.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]memory.Document, len(m.added))
	copy(out, m.added)
	return out
}

func (m *MockStore) Add(ctx context.Context, docs []memory.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.added = append(m.added, docs...)
	return nil
}

func (m *MockStore) Query(ctx context.Context, query string, k int) ([]string, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(m.entries) > k {
		return m.entries[:k], nil
	}
	return m.entries, nil
}

func (m *MockStore) Name() string { return "mock-store" }

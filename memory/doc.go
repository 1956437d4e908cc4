// Package memory implements the learner's long-term teaching memory: a
// semantic-similarity store queried by the dialogue pipeline to retrieve the
// most relevant context for a turn.
//
// The Store contract is intentionally small: Add documents, Query the k most
// similar ones. QdrantStore backs it with a Qdrant collection per subject,
// vectorizing through an embedding.Provider. InMemoryStore is a cosine
// brute-force implementation for tests and single-node demos. CachedStore
// decorates any Store with a Redis query cache and singleflight deduplication
// of concurrent identical queries.
package memory

// Package embedding provides the embedding provider contract and the OpenAI
// implementation used to vectorize memory queries and documents.
package embedding

// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// The same service must embed both chunks and queries; mixing models makes
// stored similarities meaningless.
//
// Implementations include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Local deterministic hashing, for offline use
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingValidator checks an embedding configuration against the live provider.
type EmbeddingValidator interface {
	// ValidateEmbedding creates the configured service and pings it.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
}

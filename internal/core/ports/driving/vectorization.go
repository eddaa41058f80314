package driving

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// VectorizationService maintains the vector items of each document.
type VectorizationService interface {
	// Vectorize extracts, chunks, embeds and stores a document.
	Vectorize(ctx context.Context, doc domain.SourceDocument) (*domain.VectorizeResult, error)

	// Revectorize replaces a document's items with a freshly staged generation.
	Revectorize(ctx context.Context, doc domain.SourceDocument) (*domain.VectorizeResult, error)

	// Devectorize removes every item of a document. Idempotent.
	Devectorize(ctx context.Context, documentID string) (*domain.VectorizeResult, error)

	// State returns the lifecycle state of a document.
	State(documentID string) domain.VectorizationState
}

package driven

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// Chunker splits a document's extracted text into ordered windows.
type Chunker interface {
	// Process returns the chunks of text stamped with documentID.
	Process(ctx context.Context, documentID, text string) ([]domain.Chunk, error)
}

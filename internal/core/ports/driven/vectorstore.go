package driven

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// VectorStore persists vector items and answers nearest-neighbour queries.
// Inserting an existing ID replaces the item.
type VectorStore interface {
	// Insert stores a single item.
	Insert(ctx context.Context, item domain.VectorItem) error

	// InsertBatch stores items atomically where the backend allows it.
	InsertBatch(ctx context.Context, items []domain.VectorItem) error

	// Delete removes an item. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// QueryNearest returns up to k items ordered by descending cosine similarity.
	QueryNearest(ctx context.Context, vector []float32, k int) ([]domain.VectorMatch, error)

	// ListAll returns every stored item ID.
	ListAll(ctx context.Context) ([]string, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)

	// Ready returns true once the store is open and usable.
	Ready() bool

	// Close releases resources.
	Close() error
}

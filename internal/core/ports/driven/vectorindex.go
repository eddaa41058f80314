package driven

import "context"

// ResourceVectorIndex maps a document ID to the ordered vector item IDs it owns.
// Devectorization reads this mapping instead of scanning the store.
type ResourceVectorIndex interface {
	// Get returns the item IDs for a document. Missing documents yield nil, nil.
	Get(ctx context.Context, documentID string) ([]string, error)

	// Add appends item IDs to a document's entry, creating it if needed.
	Add(ctx context.Context, documentID string, itemIDs []string) error

	// Remove deletes a document's entry. Removing a missing entry is not an error.
	Remove(ctx context.Context, documentID string) error

	// DocumentIDs returns every document with an entry, sorted ascending.
	DocumentIDs(ctx context.Context) ([]string, error)

	// Count returns the number of documents with an entry.
	Count(ctx context.Context) (int, error)
}

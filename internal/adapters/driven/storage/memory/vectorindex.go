package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.ResourceVectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.ResourceVectorIndex.
type VectorIndex struct {
	mu      sync.RWMutex
	entries map[string][]string
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		entries: make(map[string][]string),
	}
}

// Get returns a copy of the item IDs for documentID.
func (x *VectorIndex) Get(_ context.Context, documentID string) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	ids, ok := x.entries[documentID]
	if !ok {
		return nil, nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// Add appends itemIDs to the document's entry.
func (x *VectorIndex) Add(_ context.Context, documentID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[documentID] = append(x.entries[documentID], itemIDs...)
	return nil
}

// Remove deletes the document's entry.
func (x *VectorIndex) Remove(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.entries, documentID)
	return nil
}

// DocumentIDs returns indexed documents in ascending order.
func (x *VectorIndex) DocumentIDs(_ context.Context) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	ids := make([]string, 0, len(x.entries))
	for id := range x.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns how many documents have an entry.
func (x *VectorIndex) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/vec/search"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type storedItem struct {
	item      domain.VectorItem
	magnitude float32
}

// VectorStore is an in-memory implementation of driven.VectorStore.
// It is used for tests and for the "memory" backend.
type VectorStore struct {
	mu     sync.RWMutex
	items  map[string]storedItem
	closed bool
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		items: make(map[string]storedItem),
	}
}

// Insert stores a single item, replacing any item with the same ID.
func (s *VectorStore) Insert(ctx context.Context, item domain.VectorItem) error {
	return s.InsertBatch(ctx, []domain.VectorItem{item})
}

// InsertBatch stores all items or none of them.
func (s *VectorStore) InsertBatch(_ context.Context, items []domain.VectorItem) error {
	prepared := make([]storedItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || len(item.Vector) == 0 {
			return fmt.Errorf("%w: vector item requires id and vector", domain.ErrInvalidInput)
		}
		vec := make([]float32, len(item.Vector))
		copy(vec, item.Vector)
		item.Vector = vec
		prepared = append(prepared, storedItem{item: item, magnitude: search.Float32s(vec).Magnitude()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: vector store closed", domain.ErrStore)
	}
	for _, p := range prepared {
		s.items[p.item.ID] = p
	}
	return nil
}

// Delete removes an item. Missing IDs are ignored.
func (s *VectorStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// QueryNearest returns up to k items by descending cosine similarity, ties by ID.
func (s *VectorStore) QueryNearest(_ context.Context, vector []float32, k int) ([]domain.VectorMatch, error) {
	if k <= 0 {
		return nil, nil
	}
	query := search.Float32s(vector)
	queryMagnitude := query.Magnitude()
	if queryMagnitude == 0 {
		return nil, fmt.Errorf("%w: query vector has zero magnitude", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	matches := make([]domain.VectorMatch, 0, len(s.items))
	for id, stored := range s.items {
		if len(stored.item.Vector) != len(vector) || stored.magnitude == 0 {
			continue
		}
		distance := query.CosineDistance(stored.item.Vector)
		matches = append(matches, domain.VectorMatch{
			ID:       id,
			Score:    1 - float64(distance),
			Metadata: stored.item.Metadata,
		})
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// ListAll returns every stored ID in ascending order.
func (s *VectorStore) ListAll(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of stored items.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// Ready returns true until Close is called.
func (s *VectorStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Close marks the store unusable.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Get returns a stored item, for assertions in tests.
func (s *VectorStore) Get(id string) (domain.VectorItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.items[id]
	return stored.item, ok
}

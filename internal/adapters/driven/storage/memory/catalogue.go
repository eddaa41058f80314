package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// Ensure Catalogue implements the interface.
var _ driven.ResourceCatalogue = (*Catalogue)(nil)

// Catalogue is an in-memory implementation of driven.ResourceCatalogue.
type Catalogue struct {
	mu   sync.RWMutex
	docs map[string]domain.SourceDocument
}

// NewCatalogue creates a catalogue seeded with docs.
func NewCatalogue(docs ...domain.SourceDocument) *Catalogue {
	c := &Catalogue{
		docs: make(map[string]domain.SourceDocument, len(docs)),
	}
	for _, d := range docs {
		c.docs[d.ID] = d
	}
	return c
}

// Save stores or updates a resource.
func (c *Catalogue) Save(_ context.Context, doc *domain.SourceDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: resource requires an id", domain.ErrInvalidInput)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.ID] = *doc
	return nil
}

// Get returns a copy of the resource.
func (c *Catalogue) Get(_ context.Context, id string) (*domain.SourceDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ExistsMany reports presence for every requested ID.
func (c *Catalogue) ExistsMany(_ context.Context, ids []string) (map[string]bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		_, out[id] = c.docs[id]
	}
	return out, nil
}

// Delete removes a resource.
func (c *Catalogue) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, id)
	return nil
}

// List returns every resource ordered by ID.
func (c *Catalogue) List(_ context.Context) ([]domain.SourceDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.SourceDocument, 0, len(c.docs))
	for _, d := range c.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindByLocator returns resources pointing at locator, ordered by ID.
func (c *Catalogue) FindByLocator(ctx context.Context, locator string) ([]domain.SourceDocument, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.SourceDocument
	for _, d := range all {
		if d.Locator == locator {
			out = append(out, d)
		}
	}
	return out, nil
}

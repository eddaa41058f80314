package driven

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// ResourceRepository is the read side of the canonical resource data.
// Search joins against it so deleted resources never surface.
type ResourceRepository interface {
	// Get returns a resource. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.SourceDocument, error)

	// ExistsMany reports which of the given IDs still exist.
	ExistsMany(ctx context.Context, ids []string) (map[string]bool, error)
}

// ResourceCatalogue is a writable ResourceRepository kept locally by the CLI.
type ResourceCatalogue interface {
	ResourceRepository

	// Save creates or updates a resource.
	Save(ctx context.Context, doc *domain.SourceDocument) error

	// Delete removes a resource. Deleting a missing resource is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every resource ordered by ID.
	List(ctx context.Context) ([]domain.SourceDocument, error)

	// FindByLocator returns resources whose locator equals the given one.
	FindByLocator(ctx context.Context, locator string) ([]domain.SourceDocument, error)
}

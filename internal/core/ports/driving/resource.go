package driving

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// ResourceService manages the local resource catalogue and emits the
// matching lifecycle events.
type ResourceService interface {
	// Add registers a new resource and schedules its vectorization.
	// Returns domain.ErrAlreadyExists if the ID is taken.
	Add(ctx context.Context, doc domain.SourceDocument) error

	// Get retrieves a resource by ID.
	Get(ctx context.Context, id string) (*domain.SourceDocument, error)

	// List returns all catalogued resources.
	List(ctx context.Context) ([]domain.SourceDocument, error)

	// Update replaces a resource's record and schedules revectorization.
	Update(ctx context.Context, doc domain.SourceDocument) error

	// Remove deletes a resource and schedules devectorization.
	Remove(ctx context.Context, id string) error

	// ContentChanged schedules revectorization of every resource stored at locator.
	ContentChanged(ctx context.Context, locator string) (int, error)

	// Reindex schedules revectorization of every catalogued resource.
	Reindex(ctx context.Context) (int, error)
}

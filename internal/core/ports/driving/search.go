package driving

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// SearchService answers natural-language queries over vectorized resources.
type SearchService interface {
	// Search returns up to limit ranked documents. A non-positive limit
	// uses the configured default. Empty queries fail with domain.ErrInvalidQuery.
	Search(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchResult, error)

	// Status reports store readiness and item count.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}

package tui

import (
	"context"
	"sync"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	mu          sync.Mutex
	results     []domain.SearchResult
	err         error
	status      *domain.IndexStatus
	lastQuery   string
	lastFilters domain.SearchFilters
	lastLimit   int
}

func (m *MockSearchService) Search(_ context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = query
	m.lastFilters = filters
	m.lastLimit = limit
	return m.results, m.err
}

func (m *MockSearchService) Status(context.Context) (*domain.IndexStatus, error) {
	if m.status == nil {
		return &domain.IndexStatus{Ready: true}, nil
	}
	return m.status, nil
}

// MockResourceService implements the parts of driving.ResourceService the TUI uses.
type MockResourceService struct {
	driving.ResourceService

	locators []string
}

func (m *MockResourceService) ContentChanged(_ context.Context, locator string) (int, error) {
	m.locators = append(m.locators, locator)
	return 1, nil
}

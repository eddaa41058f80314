package mcp

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	status  *domain.IndexStatus
	err     error

	lastQuery   string
	lastFilters domain.SearchFilters
	lastLimit   int
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	filters domain.SearchFilters,
	limit int,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastFilters = filters
	m.lastLimit = limit
	return m.results, m.err
}

func (m *mockSearchService) Status(_ context.Context) (*domain.IndexStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.status == nil {
		return &domain.IndexStatus{}, nil
	}
	return m.status, nil
}

// mockResourceService is a mock implementation of driving.ResourceService.
type mockResourceService struct {
	resources []domain.SourceDocument
	resource  *domain.SourceDocument
	err       error
}

func (m *mockResourceService) Add(_ context.Context, _ domain.SourceDocument) error {
	return m.err
}

func (m *mockResourceService) Get(_ context.Context, _ string) (*domain.SourceDocument, error) {
	return m.resource, m.err
}

func (m *mockResourceService) List(_ context.Context) ([]domain.SourceDocument, error) {
	return m.resources, m.err
}

func (m *mockResourceService) Update(_ context.Context, _ domain.SourceDocument) error {
	return m.err
}

func (m *mockResourceService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockResourceService) ContentChanged(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

func (m *mockResourceService) Reindex(_ context.Context) (int, error) {
	return len(m.resources), m.err
}

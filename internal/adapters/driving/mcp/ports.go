// Package mcp serves the search index over the Model Context Protocol, so
// assistants can query LearnBox resources as tools and browse the catalogue
// as resources.
package mcp

import (
	"errors"

	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
)

// ErrMissingSearchService is returned by NewServer without a search service.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// Ports are the services the MCP server calls.
type Ports struct {
	Search driving.SearchService

	// Resources backs the catalogue resources. When nil the list is empty.
	Resources driving.ResourceService
}

// Validate reports a missing search service.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

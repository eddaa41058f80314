// Package tui provides an interactive terminal user interface for searching
// the resource index. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"errors"

	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
)

var (
	ErrInvalidPorts         = errors.New("tui: no ports supplied")
	ErrMissingSearchService = errors.New("tui: search service is required")
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Search provides search and index status.
	Search driving.SearchService

	// Resources looks up the catalogue record behind a result. Optional.
	Resources driving.ResourceService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchService, resources driving.ResourceService) *Ports {
	return &Ports{
		Search:    search,
		Resources: resources,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

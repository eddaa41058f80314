package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
)

// Ensure ResourceService implements the interface.
var _ driving.ResourceService = (*ResourceService)(nil)

// lifecycleEvents is the write side of driving.DocumentEvents.
type lifecycleEvents interface {
	OnDocumentCreated(doc domain.SourceDocument) error
	OnDocumentContentChanged(doc domain.SourceDocument) error
	OnDocumentDeleted(documentID string) error
}

// ResourceService keeps the local catalogue and turns each change into a
// lifecycle event. The catalogue is always written before the event is raised.
type ResourceService struct {
	catalogue driven.ResourceCatalogue
	events    lifecycleEvents
}

// NewResourceService creates a new resource service.
func NewResourceService(catalogue driven.ResourceCatalogue, events lifecycleEvents) *ResourceService {
	return &ResourceService{
		catalogue: catalogue,
		events:    events,
	}
}

// Add registers a new resource and schedules its vectorization.
func (s *ResourceService) Add(ctx context.Context, doc domain.SourceDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: resource id is required", domain.ErrInvalidInput)
	}
	if doc.Locator == "" {
		return fmt.Errorf("%w: resource locator is required", domain.ErrInvalidInput)
	}

	existing, err := s.catalogue.Get(ctx, doc.ID)
	if err == nil && existing != nil {
		return fmt.Errorf("%w: resource %s", domain.ErrAlreadyExists, doc.ID)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := s.catalogue.Save(ctx, &doc); err != nil {
		return err
	}
	return s.events.OnDocumentCreated(doc)
}

// Get retrieves a resource by ID.
func (s *ResourceService) Get(ctx context.Context, id string) (*domain.SourceDocument, error) {
	return s.catalogue.Get(ctx, id)
}

// List returns all catalogued resources.
func (s *ResourceService) List(ctx context.Context) ([]domain.SourceDocument, error) {
	return s.catalogue.List(ctx)
}

// Update replaces a resource record and schedules revectorization.
// Zero-valued fields keep their stored value.
func (s *ResourceService) Update(ctx context.Context, doc domain.SourceDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: resource id is required", domain.ErrInvalidInput)
	}

	current, err := s.catalogue.Get(ctx, doc.ID)
	if err != nil {
		return err
	}
	merged := mergeResource(*current, doc)

	if err := s.catalogue.Save(ctx, &merged); err != nil {
		return err
	}
	return s.events.OnDocumentContentChanged(merged)
}

// Remove deletes a resource and schedules devectorization. Removing an
// unknown ID still schedules devectorization so stray items are cleaned up.
func (s *ResourceService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: resource id is required", domain.ErrInvalidInput)
	}
	if err := s.catalogue.Delete(ctx, id); err != nil {
		return err
	}
	return s.events.OnDocumentDeleted(id)
}

// ContentChanged schedules revectorization of every resource stored at locator.
func (s *ResourceService) ContentChanged(ctx context.Context, locator string) (int, error) {
	docs, err := s.catalogue.FindByLocator(ctx, locator)
	if err != nil {
		return 0, err
	}
	return s.revectorizeAll(docs)
}

// Reindex schedules revectorization of every catalogued resource.
func (s *ResourceService) Reindex(ctx context.Context) (int, error) {
	docs, err := s.catalogue.List(ctx)
	if err != nil {
		return 0, err
	}
	return s.revectorizeAll(docs)
}

func (s *ResourceService) revectorizeAll(docs []domain.SourceDocument) (int, error) {
	for i, doc := range docs {
		if err := s.events.OnDocumentContentChanged(doc); err != nil {
			return i, fmt.Errorf("scheduling %s: %w", doc.ID, err)
		}
	}
	return len(docs), nil
}

// mergeResource overlays the non-empty fields of update onto current.
func mergeResource(current, update domain.SourceDocument) domain.SourceDocument {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&current.Title, update.Title)
	set(&current.Description, update.Description)
	set(&current.Locator, update.Locator)
	set(&current.ContentType, update.ContentType)
	set(&current.Year, update.Year)
	set(&current.FacultyID, update.FacultyID)
	set(&current.ModuleID, update.ModuleID)
	return current
}

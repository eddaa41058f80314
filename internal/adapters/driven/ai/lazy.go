package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/logger"
)

// Ensure LazyEmbeddingService implements the interface.
var _ driven.EmbeddingService = (*LazyEmbeddingService)(nil)

// Factory creates an embedding service on first use.
type Factory func(ctx context.Context) (driven.EmbeddingService, error)

// LazyEmbeddingService defers creating the model until the first call.
// A failed creation is not cached; the next call tries again.
type LazyEmbeddingService struct {
	mu      sync.Mutex
	factory Factory
	svc     driven.EmbeddingService

	model      string
	dimensions int
}

// NewLazyEmbeddingService wraps a factory. model and dimensions are reported
// before the service exists.
func NewLazyEmbeddingService(factory Factory, model string, dimensions int) *LazyEmbeddingService {
	return &LazyEmbeddingService{factory: factory, model: model, dimensions: dimensions}
}

// NewLazyFromSettings creates a lazy service for the configured provider.
func NewLazyFromSettings(settings domain.EmbeddingSettings) *LazyEmbeddingService {
	dims := settings.Dimensions
	if d, ok := domain.EmbeddingDimensions()[settings.Model]; ok {
		dims = d
	}
	return NewLazyEmbeddingService(func(ctx context.Context) (driven.EmbeddingService, error) {
		return CreateAndValidateEmbeddingService(ctx, &settings)
	}, settings.Model, dims)
}

// get returns the underlying service, creating it if needed.
func (l *LazyEmbeddingService) get(ctx context.Context) (driven.EmbeddingService, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.svc != nil {
		return l.svc, nil
	}

	svc, err := l.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	logger.Debug("embedding model %s initialised", svc.ModelName())
	l.svc = svc
	return svc, nil
}

// Embed generates a vector embedding for the given text.
func (l *LazyEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	svc, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts.
func (l *LazyEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	svc, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.EmbedBatch(ctx, texts)
}

// Dimensions returns the embedding vector size.
func (l *LazyEmbeddingService) Dimensions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.svc != nil {
		return l.svc.Dimensions()
	}
	return l.dimensions
}

// ModelName returns the name of the embedding model.
func (l *LazyEmbeddingService) ModelName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.svc != nil {
		return l.svc.ModelName()
	}
	return l.model
}

// Ping initialises the service if needed and pings it.
func (l *LazyEmbeddingService) Ping(ctx context.Context) error {
	svc, err := l.get(ctx)
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close releases the underlying service if it was created.
func (l *LazyEmbeddingService) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.svc == nil {
		return nil
	}
	err := l.svc.Close()
	l.svc = nil
	return err
}

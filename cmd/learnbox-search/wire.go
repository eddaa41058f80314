package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/learnbox/learnbox-search/internal/adapters/driven/ai"
	"github.com/learnbox/learnbox-search/internal/adapters/driven/config/file"
	"github.com/learnbox/learnbox-search/internal/adapters/driven/storage/memory"
	"github.com/learnbox/learnbox-search/internal/adapters/driven/storage/qdrant"
	"github.com/learnbox/learnbox-search/internal/adapters/driven/storage/sqlite"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/cli"
	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/core/services"
	"github.com/learnbox/learnbox-search/internal/logger"
	"github.com/learnbox/learnbox-search/internal/normalisers"
	"github.com/learnbox/learnbox-search/internal/postprocessors/chunker"
)

// connectTimeout bounds connecting to a remote vector store.
const connectTimeout = 10 * time.Second

// buildServices wires adapters and services from the configuration.
func buildServices(opts cli.Options) (*cli.Services, error) {
	logger.Section("Startup")

	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}

	logger.Debug("config: %s", configStore.Path())

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		// Settings commands must still run so the user can fix this.
		logger.Warn("configuration: %v", err)
	}

	dataDir := opts.DataDir
	if dataDir == "" && settings.VectorStore.Path != "" {
		dataDir = filepath.Dir(settings.VectorStore.Path)
	}
	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	logger.Debug("database: %s", db.Path())

	embedder := ai.NewLazyFromSettings(settings.Embedding)
	closers := []func() error{db.Close, embedder.Close}
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	store, index, closeStore, err := openVectorStore(settings, db, embedder.Dimensions())
	if err != nil {
		_ = closeAll()
		return nil, err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	chunk, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		_ = closeAll()
		return nil, err
	}

	extractor := normalisers.NewDefaultRegistry(normalisers.NewLoader())
	catalogue := db.Catalogue()

	manager := services.NewVectorizationManager(
		extractor, chunk, embedder, store, index, settings.Vectorization.MinContentLength,
	)
	dispatcher := services.NewDispatcher(manager, settings.Vectorization)

	search := services.NewSearchService(embedder, store, catalogue, settings.Search)
	search.SetVectorIndex(index)
	search.SetPendingCounter(dispatcher)

	reconciler := services.NewReconciler(index, catalogue, dispatcher)
	maintenance := services.NewMaintenance(settings.Reconcile, db.MaintenanceLog(), reconciler)

	logger.Info("embedding: %s (%s), store: %s", settings.Embedding.Provider, embedder.ModelName(), settings.VectorStore.Backend)

	return &cli.Services{
		Search:      search,
		Settings:    settingsService,
		Resources:   services.NewResourceService(catalogue, dispatcher),
		Maintenance: maintenance,
		Events:      dispatcher,
		Close: func(ctx context.Context) error {
			// Stop maintenance first so no reconcile enqueues after the drain.
			stopErr := maintenance.Stop()
			drainErr := dispatcher.Close(ctx)
			return errors.Join(stopErr, drainErr, closeAll())
		},
	}, nil
}

// openVectorStore returns the configured vector store and the resource
// vector index that tracks its items.
func openVectorStore(
	settings *domain.AppSettings, db *sqlite.Store, dimensions int,
) (driven.VectorStore, driven.ResourceVectorIndex, func() error, error) {
	switch settings.VectorStore.Backend {
	case domain.VectorBackendQdrant:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		store, err := qdrant.NewVectorStore(ctx, qdrant.Config{
			Host:       settings.VectorStore.QdrantHost,
			Port:       settings.VectorStore.QdrantPort,
			Collection: settings.VectorStore.QdrantCollection,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return store, db.VectorIndex(), store.Close, nil

	case domain.VectorBackendMemory:
		logger.Warn("memory vector store: vectors are lost on exit")
		return memory.NewVectorStore(), memory.NewVectorIndex(), nil, nil

	default:
		return db.VectorStore(), db.VectorIndex(), nil, nil
	}
}

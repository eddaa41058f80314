package services

import (
	"fmt"
	"time"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyStoreBackend    = "vector_store.backend"
	keyStorePath       = "vector_store.path"
	keyQdrantHost      = "vector_store.qdrant_host"
	keyQdrantPort      = "vector_store.qdrant_port"
	keyQdrantColl      = "vector_store.qdrant_collection"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyMinContent      = "vectorization.min_content_length"
	keyWorkers         = "vectorization.workers"
	keyQueueSize       = "vectorization.queue_size"
	keyTaskTimeout     = "vectorization.task_timeout_seconds"
	keySearchLimit     = "search.default_limit"
	keySearchOversamp  = "search.oversample"
	keySearchAvgWeight = "search.average_weight"
	keyReconcileOn     = "reconcile.enabled"
	keyReconcileEvery  = "reconcile.interval_minutes"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings. Missing or unusable values
// fall back to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()
	r := configReader{store: s.configStore}

	provider := domain.AIProvider(r.str(keyEmbedProvider, ""))
	if !provider.IsValid() {
		provider = d.Embedding.Provider
	}
	backend := domain.VectorBackend(r.str(keyStoreBackend, ""))
	if !backend.IsValid() {
		backend = d.VectorStore.Backend
	}

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             r.str(keyEmbedModel, d.Embedding.Model),
			BaseURL:           r.str(keyEmbedBaseURL, ""), // empty is valid for cloud providers
			APIKey:            r.str(keyEmbedAPIKey, ""),
			Dimensions:        r.count(keyEmbedDims, d.Embedding.Dimensions),
			RequestsPerSecond: r.rate(keyEmbedRPS, d.Embedding.RequestsPerSecond),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:          backend,
			Path:             r.str(keyStorePath, ""),
			QdrantHost:       r.str(keyQdrantHost, d.VectorStore.QdrantHost),
			QdrantPort:       r.count(keyQdrantPort, d.VectorStore.QdrantPort),
			QdrantCollection: r.str(keyQdrantColl, d.VectorStore.QdrantCollection),
		},
		Chunking: domain.ChunkingSettings{
			Size:    r.count(keyChunkSize, d.Chunking.Size),
			Overlap: r.nonNegative(keyChunkOverlap, d.Chunking.Overlap),
		},
		Vectorization: domain.VectorizationSettings{
			MinContentLength: r.count(keyMinContent, d.Vectorization.MinContentLength),
			Workers:          r.count(keyWorkers, d.Vectorization.Workers),
			QueueSize:        r.count(keyQueueSize, d.Vectorization.QueueSize),
			TaskTimeout:      r.duration(keyTaskTimeout, time.Second, d.Vectorization.TaskTimeout),
		},
		Search: domain.QuerySettings{
			DefaultLimit:  r.count(keySearchLimit, d.Search.DefaultLimit),
			Oversample:    r.count(keySearchOversamp, d.Search.Oversample),
			AverageWeight: r.fraction(keySearchAvgWeight, d.Search.AverageWeight),
		},
		Reconcile: domain.ReconcileSettings{
			Enabled:  r.flag(keyReconcileOn, d.Reconcile.Enabled),
			Interval: r.duration(keyReconcileEvery, time.Minute, d.Reconcile.Interval),
		},
	}, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyStoreBackend, string(settings.VectorStore.Backend)},
		{keyStorePath, settings.VectorStore.Path},
		{keyQdrantHost, settings.VectorStore.QdrantHost},
		{keyQdrantPort, settings.VectorStore.QdrantPort},
		{keyQdrantColl, settings.VectorStore.QdrantCollection},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyMinContent, settings.Vectorization.MinContentLength},
		{keyWorkers, settings.Vectorization.Workers},
		{keyQueueSize, settings.Vectorization.QueueSize},
		{keyTaskTimeout, int(settings.Vectorization.TaskTimeout / time.Second)},
		{keySearchLimit, settings.Search.DefaultLimit},
		{keySearchOversamp, settings.Search.Oversample},
		{keySearchAvgWeight, settings.Search.AverageWeight},
		{keyReconcileOn, settings.Reconcile.Enabled},
		{keyReconcileEvery, int(settings.Reconcile.Interval / time.Minute)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Only overwrite a stored key when a new one is given.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}

	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrConfig, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfig, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not fully configured",
			domain.ErrConfig, settings.Embedding.Provider)
	}
	return nil
}

// ProbeEmbedding runs the validator against the current embedding settings.
// Without a validator it succeeds.
func (s *SettingsService) ProbeEmbedding() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

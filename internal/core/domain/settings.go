package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the offline hashing embedder.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without a cloud account.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (offline hashing)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend selects the vector store implementation.
type VectorBackend string

// Available vector store backends.
const (
	VectorBackendSQLite VectorBackend = "sqlite"
	VectorBackendQdrant VectorBackend = "qdrant"
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendQdrant, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size, used by the local embedder.
	Dimensions int

	// RequestsPerSecond throttles calls to remote providers. Zero disables it.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	Backend VectorBackend

	// Path is the sqlite database file. Empty means <data dir>/index.db.
	Path string

	QdrantHost       string
	QdrantPort       int
	QdrantCollection string
}

// ChunkingSettings holds chunker parameters.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// VectorizationSettings holds lifecycle processing configuration.
type VectorizationSettings struct {
	// MinContentLength is the shortest extracted text worth indexing.
	MinContentLength int

	// Workers bounds how many documents are processed concurrently.
	Workers int

	// QueueSize bounds pending lifecycle tasks; the oldest is dropped when full.
	QueueSize int

	// TaskTimeout bounds a single lifecycle task.
	TaskTimeout time.Duration
}

// QuerySettings holds query engine tuning.
type QuerySettings struct {
	// DefaultLimit applies when a caller passes a non-positive limit.
	DefaultLimit int

	// Oversample multiplies the limit when fetching nearest neighbours.
	Oversample int

	// AverageWeight weights the mean similarity; the rest goes to the max.
	AverageWeight float64
}

// ReconcileSettings controls the orphan index reconciler.
type ReconcileSettings struct {
	Enabled  bool
	Interval time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding     EmbeddingSettings
	VectorStore   VectorStoreSettings
	Chunking      ChunkingSettings
	Vectorization VectorizationSettings
	Search        QuerySettings
	Reconcile     ReconcileSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The local embedder and sqlite store work without any external service.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      DefaultEmbeddingModels()[AIProviderLocal],
			Dimensions: 384,
		},
		VectorStore: VectorStoreSettings{
			Backend:          VectorBackendSQLite,
			QdrantHost:       "localhost",
			QdrantPort:       6334,
			QdrantCollection: "learnbox_resources",
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Vectorization: VectorizationSettings{
			MinContentLength: 50,
			Workers:          4,
			QueueSize:        1024,
			TaskTimeout:      2 * time.Minute,
		},
		Search: QuerySettings{
			DefaultLimit:  10,
			Oversample:    3,
			AverageWeight: 0.5,
		},
		Reconcile: ReconcileSettings{
			Enabled:  true,
			Interval: time.Hour,
		},
	}
}

// Validate rejects settings the services cannot run with.
func (s AppSettings) Validate() error {
	if s.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfig, s.Chunking.Size)
	}
	if s.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfig, s.Chunking.Overlap)
	}
	if s.Chunking.Size <= s.Chunking.Overlap {
		return fmt.Errorf("%w: chunk size %d must exceed overlap %d", ErrConfig, s.Chunking.Size, s.Chunking.Overlap)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrConfig, s.Embedding.Provider)
	}
	if !s.VectorStore.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector store backend %q", ErrConfig, s.VectorStore.Backend)
	}
	if s.Search.AverageWeight <= 0 || s.Search.AverageWeight > 1 {
		return fmt.Errorf("%w: average weight must be within (0,1], got %v", ErrConfig, s.Search.AverageWeight)
	}
	if s.Search.Oversample < 1 {
		return fmt.Errorf("%w: oversample must be at least 1, got %d", ErrConfig, s.Search.Oversample)
	}
	if s.Vectorization.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrConfig, s.Vectorization.Workers)
	}
	if s.Vectorization.QueueSize < 1 {
		return fmt.Errorf("%w: queue size must be at least 1, got %d", ErrConfig, s.Vectorization.QueueSize)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-v1",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

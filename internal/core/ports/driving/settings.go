package driving

import "github.com/learnbox/learnbox-search/internal/core/domain"

// SettingsService reads and writes the persisted configuration.
type SettingsService interface {
	// Get returns the stored settings over the defaults. Unusable values
	// read as their default.
	Get() (*domain.AppSettings, error)

	// Save validates and persists settings. An empty API key keeps the
	// stored one.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider switches provider, filling in the default model,
	// base URL and dimensions.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the stored settings without contacting any service.
	// Failures wrap domain.ErrConfig.
	Validate() error

	// ProbeEmbedding contacts the configured provider and checks the vector
	// size it returns.
	ProbeEmbedding() error
}

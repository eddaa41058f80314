package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

const (
	defaultValidateTimeout = 15 * time.Second
	probeText              = "LearnBox embedding probe"
)

var _ driven.EmbeddingValidator = (*ConfigValidator)(nil)

// ConfigValidator checks a configuration against the live provider: the
// service must answer a ping and return vectors of the size it declares,
// since that size fixes the vector store layout.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator returns a validator with the default timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: defaultValidateTimeout}
}

// ValidateEmbedding creates the configured service, pings it and embeds a
// probe string.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck // probe service is discarded

	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("%w: probe embedding: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vec) != svc.Dimensions() {
		return fmt.Errorf("%w: model %s returns %d dimensions, expected %d; set embedding.dimensions",
			domain.ErrConfig, svc.ModelName(), len(vec), svc.Dimensions())
	}
	return nil
}

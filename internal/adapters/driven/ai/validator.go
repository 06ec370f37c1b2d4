package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// probeText is embedded once to confirm the model returns vectors of the
// advertised size before they reach the index.
const probeText = "coursemate connectivity check"

// ConfigValidator checks provider settings against the live service before
// the settings service persists them.
type ConfigValidator struct {
	timeout     time.Duration
	newEmbedder func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	newModel    func(*domain.LLMSettings) (driven.ModelClient, error)
}

// NewConfigValidator returns a validator backed by the real provider factories.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		timeout:     pingTimeout,
		newEmbedder: CreateEmbeddingService,
		newModel:    CreateModelClient,
	}
}

// ValidateEmbedding pings the embedding provider and embeds a probe string.
// Unconfigured settings are accepted as-is.
func (v *ConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	if cfg == nil || !cfg.IsConfigured() {
		return nil
	}
	svc, err := v.newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, cfg.Provider, err)
	}
	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("%w: embedding with %s: %w", domain.ErrEmbeddingUnavailable, svc.ModelName(), err)
	}
	if want := svc.Dimensions(); want > 0 && len(vec) != want {
		return fmt.Errorf("%w: model %s returned %d dimensions, expected %d",
			domain.ErrEmbeddingUnavailable, svc.ModelName(), len(vec), want)
	}
	return nil
}

// ValidateLLM pings the model provider. Unconfigured settings are accepted.
func (v *ConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	if cfg == nil || !cfg.IsConfigured() {
		return nil
	}
	client, err := v.newModel(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if client == nil {
		return nil
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrLLMUnavailable, cfg.Provider, err)
	}
	return nil
}

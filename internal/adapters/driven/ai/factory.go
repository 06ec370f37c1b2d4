// Package ai turns provider settings into a model client and an embedding
// service.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/coursemate/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/coursemate/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/coursemate/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/coursemate/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/coursemate/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/llm/ratelimit"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// pingTimeout bounds every connectivity check.
const pingTimeout = 5 * time.Second

// InitResult holds what Init could build. Either service may be nil.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	ModelClient      driven.ModelClient

	// Warnings lists the embedding failures that were tolerated.
	Warnings []string
	// FellBack is set when retrieval must use keyword search.
	FellBack bool
}

func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.ModelClient != nil {
		r.ModelClient.Close()
	}
}

// Init builds both services. An embedding failure only records a warning,
// since search degrades to keywords. A model failure is returned. With
// validate set both services are pinged first.
func Init(settings *domain.AppSettings, validate bool) (*InitResult, error) {
	newEmbedding, newModel := CreateEmbeddingService, CreateModelClient
	if validate {
		newEmbedding, newModel = CreateAndValidateEmbeddingService, CreateAndValidateModelClient
	}

	result := &InitResult{}
	if svc, err := newEmbedding(&settings.Embedding); err != nil {
		logger.Warn("embedding service unavailable: %v", err)
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
	} else {
		result.EmbeddingService = svc
	}

	model, err := newModel(&settings.LLM)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.ModelClient = model
	return result, nil
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// reachable wraps a construction error in sentinel, or pings svc and closes
// it when the ping fails. A nil svc (provider not configured) passes.
func reachable[T pingCloser](svc T, err error, sentinel error, key string) (T, error) {
	var none T
	if err != nil {
		return none, fmt.Errorf("%w: %w. Run 'coursemate settings set %s ...' to fix", sentinel, err, key)
	}
	if any(svc) == nil {
		return none, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return none, fmt.Errorf("%w: service unreachable (%w)", sentinel, err)
	}
	return svc, nil
}

func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	return reachable(svc, err, domain.ErrEmbeddingUnavailable, "embedding.provider")
}

func CreateAndValidateModelClient(settings *domain.LLMSettings) (driven.ModelClient, error) {
	client, err := CreateModelClient(settings)
	return reachable(client, err, domain.ErrLLMUnavailable, "llm.provider")
}

// CreateEmbeddingService returns nil, nil when no embedding provider is
// configured. The vector size comes from the known model table; for unknown
// Ollama models it is learned from the first response.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	dims := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		})
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		})
	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateModelClient returns nil, nil when no model is configured. The client
// is throttled when RequestsPerSecond is positive.
func CreateModelClient(settings *domain.LLMSettings) (driven.ModelClient, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		client driven.ModelClient
		err    error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		client, err = ollamallm.NewClient(ollamallm.Config{
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})
	case domain.AIProviderOpenAI:
		client, err = openaillm.NewClient(openaillm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})
	case domain.AIProviderAnthropic:
		client, err = anthropicllm.NewClient(anthropicllm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return ratelimit.Wrap(client, ratelimit.Config{RequestsPerSecond: settings.RequestsPerSecond}), nil
}

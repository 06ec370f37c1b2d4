package driven

import "github.com/custodia-labs/coursemate/internal/core/domain"

// AIConfigValidator checks provider settings against the live service so a
// bad key or model name is caught in `settings` instead of mid-question.
// Settings that name no usable provider pass unchecked.
type AIConfigValidator interface {
	ValidateEmbedding(cfg *domain.EmbeddingSettings) error
	ValidateLLM(cfg *domain.LLMSettings) error
}

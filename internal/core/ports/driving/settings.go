package driving

import "github.com/custodia-labs/coursemate/internal/core/domain"

// SettingsService reads and edits the user's provider, index, chat and
// server settings. Keys are dotted, e.g. "llm.model" or "index.max_results".
type SettingsService interface {
	// Get returns the effective settings: stored values over defaults, with
	// API keys falling back to the provider's environment variable.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// Set parses value according to key's type and stores it.
	Set(key, value string) error

	// Reset drops a stored key, or every key when key is empty.
	Reset(key string) error

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate reports the first setting that would stop a question from
	// being answered. It makes no network calls.
	Validate() error
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig contact the configured
	// provider.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}

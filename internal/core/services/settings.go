package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyLLMTemperature   = "llm.temperature"
	keyLLMRPS           = "llm.requests_per_second"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyIndexBackend     = "index.backend"
	keyIndexQdrantAddr  = "index.qdrant_addr"
	keyIndexMaxResults  = "index.max_results"
	keyIndexChunkSize   = "index.chunk_size"
	keyIndexOverlap     = "index.chunk_overlap"
	keyIndexStrategy    = "index.chunk_strategy"
	keyChatMaxHistory   = "chat.max_history"
	keyServerPort       = "server.port"
	keyServerCORSOrigin = "server.cors_origin"
	keyServerStaticDir  = "server.static_dir"
	keyServerRPS        = "server.requests_per_second"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every key accepted by Set.
var settingKeys = map[string]keyKind{
	keyLLMProvider:      kindString,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyLLMMaxTokens:     kindInt,
	keyLLMTemperature:   kindFloat,
	keyLLMRPS:           kindFloat,
	keyEmbedProvider:    kindString,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyEmbedAPIKey:      kindString,
	keyIndexBackend:     kindString,
	keyIndexQdrantAddr:  kindString,
	keyIndexMaxResults:  kindInt,
	keyIndexChunkSize:   kindInt,
	keyIndexOverlap:     kindInt,
	keyIndexStrategy:    kindString,
	keyChatMaxHistory:   kindInt,
	keyServerPort:       kindInt,
	keyServerCORSOrigin: kindString,
	keyServerStaticDir:  kindString,
	keyServerRPS:        kindFloat,
}

// SettingKeys returns every configurable key, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Provider API keys fall back to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	llmModel := s.configStore.GetString(keyLLMModel)
	if llmModel == "" {
		llmModel = domain.DefaultLLMModels()[llmProvider]
	}

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	embedModel := s.configStore.GetString(keyEmbedModel)
	if embedModel == "" && embedProvider != "" {
		embedModel = domain.DefaultEmbeddingModels()[embedProvider]
	}

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          llmProvider,
			Model:             llmModel,
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            domain.ResolveAPIKey(llmProvider, s.configStore.GetString(keyLLMAPIKey)),
			MaxTokens:         s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			RequestsPerSecond: s.getFloat(keyLLMRPS, defaults.LLM.RequestsPerSecond),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    embedModel,
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   domain.ResolveAPIKey(embedProvider, s.configStore.GetString(keyEmbedAPIKey)),
		},
		Index: domain.IndexSettings{
			Backend:       s.getBackend(defaults.Index.Backend),
			QdrantAddr:    s.getString(keyIndexQdrantAddr, defaults.Index.QdrantAddr),
			MaxResults:    s.getInt(keyIndexMaxResults, defaults.Index.MaxResults),
			ChunkSize:     s.getInt(keyIndexChunkSize, defaults.Index.ChunkSize),
			ChunkOverlap:  s.getInt(keyIndexOverlap, defaults.Index.ChunkOverlap),
			ChunkStrategy: s.getStrategy(defaults.Index.ChunkStrategy),
		},
		Chat: domain.ChatSettings{
			MaxHistory: s.getInt(keyChatMaxHistory, defaults.Chat.MaxHistory),
		},
		Server: domain.ServerSettings{
			Port:              s.getInt(keyServerPort, defaults.Server.Port),
			CORSOrigin:        s.configStore.GetString(keyServerCORSOrigin),
			StaticDir:         s.configStore.GetString(keyServerStaticDir),
			RequestsPerSecond: s.getFloat(keyServerRPS, defaults.Server.RequestsPerSecond),
		},
	}

	return settings, nil
}

// Save persists application settings.
// API keys are only written when set, so environment fallbacks are not persisted
// unless they were already stored.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMRPS, settings.LLM.RequestsPerSecond},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyIndexBackend, settings.Index.Backend.String()},
		{keyIndexQdrantAddr, settings.Index.QdrantAddr},
		{keyIndexMaxResults, settings.Index.MaxResults},
		{keyIndexChunkSize, settings.Index.ChunkSize},
		{keyIndexOverlap, settings.Index.ChunkOverlap},
		{keyIndexStrategy, settings.Index.ChunkStrategy.String()},
		{keyChatMaxHistory, settings.Chat.MaxHistory},
		{keyServerPort, settings.Server.Port},
		{keyServerCORSOrigin, settings.Server.CORSOrigin},
		{keyServerStaticDir, settings.Server.StaticDir},
		{keyServerRPS, settings.Server.RequestsPerSecond},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" && settings.LLM.APIKey != domain.ResolveAPIKey(settings.LLM.Provider, "") {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != domain.ResolveAPIKey(settings.Embedding.Provider, "") {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	return nil
}

// Set updates a single dotted key, converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		typed = f
	default:
		typed = value
	}

	switch key {
	case keyLLMProvider, keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
	case keyIndexBackend:
		if !domain.IndexBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, value)
		}
	case keyIndexStrategy:
		if !domain.ChunkStrategy(value).IsValid() {
			return fmt.Errorf("%w: unknown chunk strategy %q", domain.ErrInvalidInput, value)
		}
	}

	return s.configStore.Set(key, typed)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	apiKey = domain.ResolveAPIKey(provider, apiKey)
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	apiKey = domain.ResolveAPIKey(provider, apiKey)
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		if env := settings.LLM.Provider.APIKeyEnv(); env != "" {
			return fmt.Errorf("%w: set llm.api_key or %s", domain.ErrLLMUnavailable, env)
		}
		return fmt.Errorf("%w: llm.provider %q is not usable", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if settings.Embedding.Provider == domain.AIProviderAnthropic {
		return fmt.Errorf("%w: anthropic does not provide embeddings", domain.ErrEmbeddingUnavailable)
	}
	if !settings.Index.Backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, settings.Index.Backend)
	}
	if settings.Index.Backend == domain.IndexBackendQdrant && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: the qdrant backend requires an embedding provider", domain.ErrEmbeddingUnavailable)
	}
	if settings.Index.ChunkOverlap >= settings.Index.ChunkSize {
		return fmt.Errorf("%w: index.chunk_overlap must be smaller than index.chunk_size", domain.ErrInvalidInput)
	}
	return nil
}

// Reset removes key so its default applies again. An empty key resets every
// setting, including stored API keys.
func (s *SettingsService) Reset(key string) error {
	if key == "" {
		for _, k := range SettingKeys() {
			if err := s.configStore.Unset(k); err != nil {
				return fmt.Errorf("reset %s: %w", k, err)
			}
		}
		return nil
	}
	if _, ok := settingKeys[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getStrategy(defaultVal domain.ChunkStrategy) domain.ChunkStrategy {
	strategy := domain.ChunkStrategy(s.configStore.GetString(keyIndexStrategy))
	if !strategy.IsValid() {
		return defaultVal
	}
	return strategy
}

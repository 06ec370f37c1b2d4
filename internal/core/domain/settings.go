package domain

import "os"

// AIProvider names a model vendor. Not every provider offers embeddings.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

type providerInfo struct {
	label     string
	keyEnv    string // empty for keyless (local) providers
	llm       string // default chat model
	embedding string // default embedding model, empty when unsupported
}

// providers is ordered for menus: local first.
var providers = []struct {
	id   AIProvider
	info providerInfo
}{
	{AIProviderOllama, providerInfo{label: "Ollama (local)", llm: "llama3.2", embedding: "nomic-embed-text"}},
	{AIProviderOpenAI, providerInfo{label: "OpenAI (cloud)", keyEnv: "OPENAI_API_KEY", llm: "gpt-4o-mini", embedding: "text-embedding-3-small"}},
	{AIProviderAnthropic, providerInfo{label: "Anthropic (cloud)", keyEnv: "ANTHROPIC_API_KEY", llm: "claude-sonnet-4-20250514"}},
}

func (p AIProvider) info() (providerInfo, bool) {
	for _, e := range providers {
		if e.id == p {
			return e.info, true
		}
	}
	return providerInfo{}, false
}

func (p AIProvider) IsValid() bool {
	_, ok := p.info()
	return ok
}

// RequiresAPIKey is true for the cloud providers.
func (p AIProvider) RequiresAPIKey() bool {
	return p.APIKeyEnv() != ""
}

func (p AIProvider) IsLocal() bool {
	info, ok := p.info()
	return ok && info.keyEnv == ""
}

// APIKeyEnv is the environment variable read when no key is configured.
func (p AIProvider) APIKeyEnv() string {
	info, _ := p.info()
	return info.keyEnv
}

func (p AIProvider) String() string {
	return string(p)
}

func (p AIProvider) Description() string {
	if info, ok := p.info(); ok {
		return info.label
	}
	return "Unknown"
}

// ResolveAPIKey prefers the configured key over the provider's environment
// variable.
func ResolveAPIKey(p AIProvider, configured string) string {
	if configured != "" {
		return configured
	}
	if env := p.APIKeyEnv(); env != "" {
		return os.Getenv(env)
	}
	return ""
}

func usable(p AIProvider, apiKey string) bool {
	return p.IsValid() && (!p.RequiresAPIKey() || apiKey != "")
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured only checks credentials. Whether the provider can embed at
// all is reported by the embedding factory.
func (e EmbeddingSettings) IsConfigured() bool {
	return usable(e.Provider, e.APIKey)
}

// LLMSettings holds model client configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens bounds each model response.
	MaxTokens int

	// Temperature is the sampling temperature. Zero keeps answers deterministic.
	Temperature float64

	// RequestsPerSecond throttles model calls. Zero disables throttling.
	RequestsPerSecond float64
}

func (l LLMSettings) IsConfigured() bool {
	return usable(l.Provider, l.APIKey)
}

// IndexBackend selects where content vectors live.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendMemory keeps vectors in-process, rebuilt from the store on start.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendQdrant stores vectors in a Qdrant collection.
	IndexBackendQdrant IndexBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	return b == IndexBackendMemory || b == IndexBackendQdrant
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// ChunkStrategy selects how lesson text is cut into chunks at ingestion.
type ChunkStrategy string

const (
	// ChunkStrategyFixed cuts fixed-size character windows.
	ChunkStrategyFixed ChunkStrategy = "fixed"

	// ChunkStrategySentence packs whole sentences up to the chunk size and
	// repeats trailing sentences as overlap.
	ChunkStrategySentence ChunkStrategy = "sentence"
)

func (c ChunkStrategy) IsValid() bool {
	return c == ChunkStrategyFixed || c == ChunkStrategySentence
}

func (c ChunkStrategy) String() string {
	return string(c)
}

// IndexSettings holds retrieval and ingestion configuration.
type IndexSettings struct {
	// Backend selects the vector store.
	Backend IndexBackend

	// QdrantAddr is the gRPC address of the Qdrant server.
	QdrantAddr string

	// MaxResults bounds every content search.
	MaxResults int

	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int

	// ChunkStrategy picks the splitter. Changing it affects new ingests only.
	ChunkStrategy ChunkStrategy
}

// ChatSettings holds conversation configuration.
type ChatSettings struct {
	// MaxHistory is the number of exchanges kept per session.
	MaxHistory int
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Port is the listen port.
	Port int

	// CORSOrigin is the allowed origin. Empty disables CORS headers.
	CORSOrigin string

	// StaticDir is served at "/" when set.
	StaticDir string

	// RequestsPerSecond throttles API requests. Zero disables throttling.
	RequestsPerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds model client settings.
	LLM LLMSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Index holds retrieval settings.
	Index IndexSettings

	// Chat holds session settings.
	Chat ChatSettings

	// Server holds HTTP API settings.
	Server ServerSettings
}

// Default values.
const (
	DefaultMaxTokens    = 800
	DefaultMaxResults   = 5
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
	DefaultMaxHistory   = 2
	DefaultServerPort   = 8000
	DefaultQdrantAddr   = "localhost:6334"
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings are left unconfigured; retrieval uses keyword search until set up.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:    AIProviderAnthropic,
			Model:       DefaultLLMModels()[AIProviderAnthropic],
			MaxTokens:   DefaultMaxTokens,
			Temperature: 0,
		},
		Embedding: EmbeddingSettings{},
		Index: IndexSettings{
			Backend:       IndexBackendMemory,
			QdrantAddr:    DefaultQdrantAddr,
			MaxResults:    DefaultMaxResults,
			ChunkSize:     DefaultChunkSize,
			ChunkOverlap:  DefaultChunkOverlap,
			ChunkStrategy: ChunkStrategyFixed,
		},
		Chat: ChatSettings{
			MaxHistory: DefaultMaxHistory,
		},
		Server: ServerSettings{
			Port: DefaultServerPort,
		},
	}
}

// AllEmbeddingProviders lists the providers with an embedding model.
func AllEmbeddingProviders() []AIProvider {
	var out []AIProvider
	for _, e := range providers {
		if e.info.embedding != "" {
			out = append(out, e.id)
		}
	}
	return out
}

// AllLLMProviders lists every provider; all of them support tool calling.
func AllLLMProviders() []AIProvider {
	out := make([]AIProvider, len(providers))
	for i, e := range providers {
		out[i] = e.id
	}
	return out
}

func DefaultEmbeddingModels() map[AIProvider]string {
	out := make(map[AIProvider]string)
	for _, e := range providers {
		if e.info.embedding != "" {
			out[e.id] = e.info.embedding
		}
	}
	return out
}

func DefaultLLMModels() map[AIProvider]string {
	out := make(map[AIProvider]string, len(providers))
	for _, e := range providers {
		out[e.id] = e.info.llm
	}
	return out
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

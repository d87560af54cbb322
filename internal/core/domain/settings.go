package domain

import "time"

// AIProvider names a backend for embeddings, chat, or both.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHash embeds offline with a deterministic lexical hash. It
	// cannot chat and is meant for trying coursemate out and for tests.
	AIProviderHash AIProvider = "hash"
)

type providerInfo struct {
	description string
	apiKey      bool
	local       bool
	embedModel  string // empty when the provider cannot embed
	chatModel   string // empty when the provider cannot chat
}

// providerOrder is the order providers are offered in menus.
var providerOrder = []AIProvider{AIProviderHash, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}

var providerTable = map[AIProvider]providerInfo{
	AIProviderHash: {
		description: "Hash (offline, lexical)",
		local:       true,
		embedModel:  "hash-256",
	},
	AIProviderOllama: {
		description: "Ollama (local)",
		local:       true,
		embedModel:  "nomic-embed-text",
		chatModel:   "llama3.2",
	},
	AIProviderOpenAI: {
		description: "OpenAI (cloud)",
		apiKey:      true,
		embedModel:  "text-embedding-3-small",
		chatModel:   "gpt-4o-mini",
	},
	AIProviderAnthropic: {
		description: "Anthropic (cloud)",
		apiKey:      true,
		chatModel:   "claude-3-5-sonnet-latest",
	},
}

func (p AIProvider) IsValid() bool {
	_, ok := providerTable[p]
	return ok
}

func (p AIProvider) RequiresAPIKey() bool { return providerTable[p].apiKey }

func (p AIProvider) IsLocal() bool { return providerTable[p].local }

// CanEmbed reports whether the provider offers an embedding model.
func (p AIProvider) CanEmbed() bool { return providerTable[p].embedModel != "" }

// CanChat reports whether the provider offers a chat model.
func (p AIProvider) CanChat() bool { return providerTable[p].chatModel != "" }

func (p AIProvider) String() string { return string(p) }

// Description is the label shown in the settings menus.
func (p AIProvider) Description() string {
	if info, ok := providerTable[p]; ok {
		return info.description
	}
	return "Unknown"
}

// EmbeddingSettings selects the model that vectorises chunks and questions.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string

	// BaseURL overrides the endpoint, for a remote Ollama or an
	// OpenAI-compatible server.
	BaseURL string
	APIKey  string
}

// IsConfigured reports whether an embedder can be built from e.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.CanEmbed() && (!e.Provider.RequiresAPIKey() || e.APIKey != "")
}

// LLMSettings selects the model that writes answers.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// Temperature is kept low so answers stay close to the context.
	Temperature float64

	// MaxTokens caps the length of one answer.
	MaxTokens int
}

// IsConfigured reports whether a chat model can be built from l.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.CanChat() && (!l.Provider.RequiresAPIKey() || l.APIKey != "")
}

// RetrievalSettings holds chunking and retrieval tuning.
type RetrievalSettings struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by consecutive chunks.
	ChunkOverlap int

	// TopK is the number of chunks retrieved per question.
	TopK int

	// SimilarityThreshold is the minimum score kept by score-filtered retrieval.
	SimilarityThreshold float64

	// HistoryTurns is the number of conversation turns sent to the model.
	// One turn is a user message plus an assistant reply.
	HistoryTurns int
}

// StoreBackend selects where chunks are kept.
type StoreBackend string

const (
	StoreBackendSQLite   StoreBackend = "sqlite"
	StoreBackendMemory   StoreBackend = "memory"
	StoreBackendPostgres StoreBackend = "postgres"
)

func (b StoreBackend) IsValid() bool {
	return b == StoreBackendSQLite || b == StoreBackendMemory || b == StoreBackendPostgres
}

func (b StoreBackend) String() string { return string(b) }

// StoreSettings holds chunk store configuration.
type StoreSettings struct {
	Backend StoreBackend

	// DataDir holds the sqlite database. Empty means ~/.coursemate.
	DataDir string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
}

// ProviderSettings bounds calls to external AI providers.
type ProviderSettings struct {
	// Timeout bounds one-shot embedding and chat calls.
	Timeout time.Duration

	// StreamTimeout bounds an entire streamed answer.
	StreamTimeout time.Duration

	// EmbedRatePerSecond limits embedding requests. Zero disables limiting.
	EmbedRatePerSecond float64

	// EmbedBurst is the limiter burst size.
	EmbedBurst int
}

// IngestSettings holds upload pipeline configuration.
type IngestSettings struct {
	// Workers is the number of files processed concurrently.
	Workers int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Store     StoreSettings
	Providers ProviderSettings
	Ingest    IngestSettings
}

// Default tuning values.
const (
	DefaultChunkSize           = 1000
	DefaultChunkOverlap        = 200
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.3
	DefaultHistoryTurns        = 10
	DefaultTemperature         = 0.1
	DefaultMaxTokens           = 1500
	DefaultProviderTimeout     = 60 * time.Second
	DefaultStreamTimeout       = 5 * time.Minute
	DefaultIngestWorkers       = 4
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; asking questions stays disabled until the
// user configures a provider. Embeddings default to the offline hash
// embedder so document management works out of the box.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderHash,
		},
		LLM: LLMSettings{
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Retrieval: RetrievalSettings{
			ChunkSize:           DefaultChunkSize,
			ChunkOverlap:        DefaultChunkOverlap,
			TopK:                DefaultTopK,
			SimilarityThreshold: DefaultSimilarityThreshold,
			HistoryTurns:        DefaultHistoryTurns,
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
		Providers: ProviderSettings{
			Timeout:       DefaultProviderTimeout,
			StreamTimeout: DefaultStreamTimeout,
		},
		Ingest: IngestSettings{
			Workers: DefaultIngestWorkers,
		},
	}
}

// AllEmbeddingProviders lists the providers that can embed, in menu order.
func AllEmbeddingProviders() []AIProvider {
	return providersWhere(AIProvider.CanEmbed)
}

// AllLLMProviders lists the providers that can chat, in menu order.
func AllLLMProviders() []AIProvider {
	return providersWhere(AIProvider.CanChat)
}

func providersWhere(keep func(AIProvider) bool) []AIProvider {
	var out []AIProvider
	for _, p := range providerOrder {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// DefaultEmbeddingModels maps each embedding provider to the model used when
// none is configured.
func DefaultEmbeddingModels() map[AIProvider]string {
	out := make(map[AIProvider]string)
	for p, info := range providerTable {
		if info.embedModel != "" {
			out[p] = info.embedModel
		}
	}
	return out
}

// DefaultLLMModels maps each chat provider to the model used when none is
// configured.
func DefaultLLMModels() map[AIProvider]string {
	out := make(map[AIProvider]string)
	for p, info := range providerTable {
		if info.chatModel != "" {
			out[p] = info.chatModel
		}
	}
	return out
}

// EmbeddingDimensions gives the vector width of the models coursemate knows.
// Adapters fall back to their own default for anything else.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hash-256":               256,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

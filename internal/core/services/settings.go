package services

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Keys in config.toml. The api_key entries name secrets, they are not secrets.
//
//nolint:gosec // G101
const (
	KeyEmbedProvider       = "embedding.provider"
	KeyEmbedModel          = "embedding.model"
	KeyEmbedBaseURL        = "embedding.base_url"
	KeyEmbedAPIKey         = "embedding.api_key"
	KeyLLMProvider         = "llm.provider"
	KeyLLMModel            = "llm.model"
	KeyLLMBaseURL          = "llm.base_url"
	KeyLLMAPIKey           = "llm.api_key"
	KeyLLMTemperature      = "llm.temperature"
	KeyLLMMaxTokens        = "llm.max_tokens"
	KeyChunkSize           = "retrieval.chunk_size"
	KeyChunkOverlap        = "retrieval.chunk_overlap"
	KeyTopK                = "retrieval.top_k"
	KeySimilarityThreshold = "retrieval.similarity_threshold"
	KeyHistoryTurns        = "retrieval.history_turns"
	KeyStoreBackend        = "store.backend"
	KeyStoreDataDir        = "store.data_dir"
	KeyStorePostgresDSN    = "store.postgres_dsn"
	KeyTimeoutSeconds      = "providers.timeout_seconds"
	KeyStreamTimeout       = "providers.stream_timeout_seconds"
	KeyEmbedRate           = "providers.embed_rate_per_second"
	KeyEmbedBurst          = "providers.embed_burst"
	KeyIngestWorkers       = "ingest.workers"
)

// defaultOllamaURL is filled in for local providers without a base URL.
const defaultOllamaURL = "http://localhost:11434"

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindProvider
	kindBackend
)

// configKeys lists every settable key and how its value is parsed.
var configKeys = map[string]keyKind{
	KeyEmbedProvider:       kindProvider,
	KeyEmbedModel:          kindString,
	KeyEmbedBaseURL:        kindString,
	KeyEmbedAPIKey:         kindString,
	KeyLLMProvider:         kindProvider,
	KeyLLMModel:            kindString,
	KeyLLMBaseURL:          kindString,
	KeyLLMAPIKey:           kindString,
	KeyLLMTemperature:      kindFloat,
	KeyLLMMaxTokens:        kindInt,
	KeyChunkSize:           kindInt,
	KeyChunkOverlap:        kindInt,
	KeyTopK:                kindInt,
	KeySimilarityThreshold: kindFloat,
	KeyHistoryTurns:        kindInt,
	KeyStoreBackend:        kindBackend,
	KeyStoreDataDir:        kindString,
	KeyStorePostgresDSN:    kindString,
	KeyTimeoutSeconds:      kindInt,
	KeyStreamTimeout:       kindInt,
	KeyEmbedRate:           kindFloat,
	KeyEmbedBurst:          kindInt,
	KeyIngestWorkers:       kindInt,
}

// ConfigKeys lists what `settings set` accepts, sorted.
func ConfigKeys() []string {
	return slices.Sorted(maps.Keys(configKeys))
}

type setting struct {
	key   string
	value any
}

// SettingsService maps AppSettings onto flat config keys.
type SettingsService struct {
	store     driven.ConfigStore
	cfg       reader
	validator driven.AIConfigValidator
}

// NewSettingsService wires the service. With a nil validator the
// Validate*Config probes always pass.
func NewSettingsService(store driven.ConfigStore, validator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{store: store, cfg: reader{store}, validator: validator}
}

// Get retrieves current application settings, filling gaps with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	embedProvider := s.cfg.provider(KeyEmbedProvider, d.Embedding.Provider)
	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.cfg.str(KeyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.cfg.GetString(KeyEmbedBaseURL),
			APIKey:   s.cfg.GetString(KeyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:    s.cfg.provider(KeyLLMProvider, d.LLM.Provider),
			Model:       s.cfg.GetString(KeyLLMModel),
			BaseURL:     s.cfg.GetString(KeyLLMBaseURL),
			APIKey:      s.cfg.GetString(KeyLLMAPIKey),
			Temperature: s.cfg.real(KeyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.cfg.whole(KeyLLMMaxTokens, d.LLM.MaxTokens),
		},
		Retrieval: domain.RetrievalSettings{
			ChunkSize:           s.cfg.whole(KeyChunkSize, d.Retrieval.ChunkSize),
			ChunkOverlap:        s.cfg.whole(KeyChunkOverlap, d.Retrieval.ChunkOverlap),
			TopK:                s.cfg.whole(KeyTopK, d.Retrieval.TopK),
			SimilarityThreshold: s.cfg.real(KeySimilarityThreshold, d.Retrieval.SimilarityThreshold),
			HistoryTurns:        s.cfg.whole(KeyHistoryTurns, d.Retrieval.HistoryTurns),
		},
		Store: domain.StoreSettings{
			Backend:     s.cfg.backend(d.Store.Backend),
			DataDir:     s.cfg.GetString(KeyStoreDataDir),
			PostgresDSN: s.cfg.GetString(KeyStorePostgresDSN),
		},
		Providers: domain.ProviderSettings{
			Timeout:            s.cfg.seconds(KeyTimeoutSeconds, d.Providers.Timeout),
			StreamTimeout:      s.cfg.seconds(KeyStreamTimeout, d.Providers.StreamTimeout),
			EmbedRatePerSecond: s.cfg.real(KeyEmbedRate, d.Providers.EmbedRatePerSecond),
			EmbedBurst:         s.cfg.whole(KeyEmbedBurst, d.Providers.EmbedBurst),
		},
		Ingest: domain.IngestSettings{
			Workers: s.cfg.whole(KeyIngestWorkers, d.Ingest.Workers),
		},
	}, nil
}

// Save persists application settings. Empty API keys are left untouched.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyLLMTemperature, settings.LLM.Temperature},
		{KeyLLMMaxTokens, settings.LLM.MaxTokens},
		{KeyChunkSize, settings.Retrieval.ChunkSize},
		{KeyChunkOverlap, settings.Retrieval.ChunkOverlap},
		{KeyTopK, settings.Retrieval.TopK},
		{KeySimilarityThreshold, settings.Retrieval.SimilarityThreshold},
		{KeyHistoryTurns, settings.Retrieval.HistoryTurns},
		{KeyStoreBackend, settings.Store.Backend.String()},
		{KeyStoreDataDir, settings.Store.DataDir},
		{KeyStorePostgresDSN, settings.Store.PostgresDSN},
		{KeyTimeoutSeconds, int(settings.Providers.Timeout / time.Second)},
		{KeyStreamTimeout, int(settings.Providers.StreamTimeout / time.Second)},
		{KeyEmbedRate, settings.Providers.EmbedRatePerSecond},
		{KeyEmbedBurst, settings.Providers.EmbedBurst},
		{KeyIngestWorkers, settings.Ingest.Workers},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, setting{KeyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, setting{KeyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.store.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider switches embeddings to provider. An empty model picks
// the provider default. Existing chunks keep their old vectors, so a switch
// usually means re-uploading the course material.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.CanEmbed() {
		return fmt.Errorf("%w: %q cannot produce embeddings", domain.ErrInvalidInput, provider)
	}
	return s.switchProvider(provider, apiKey, func(a *domain.AppSettings) {
		a.Embedding = domain.EmbeddingSettings{
			Provider: provider,
			Model:    cmp.Or(model, domain.DefaultEmbeddingModels()[provider]),
			BaseURL:  baseURLFor(provider, a.Embedding.BaseURL),
			APIKey:   apiKey,
		}
	})
}

// SetLLMProvider switches answering to provider. Temperature and token
// limits are kept.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.CanChat() {
		return fmt.Errorf("%w: %q cannot answer questions", domain.ErrInvalidInput, provider)
	}
	return s.switchProvider(provider, apiKey, func(a *domain.AppSettings) {
		a.LLM.Provider = provider
		a.LLM.Model = cmp.Or(model, domain.DefaultLLMModels()[provider])
		a.LLM.BaseURL = baseURLFor(provider, a.LLM.BaseURL)
		a.LLM.APIKey = apiKey
	})
}

func (s *SettingsService) switchProvider(provider domain.AIProvider, apiKey string, apply func(*domain.AppSettings)) error {
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: %s needs an API key", domain.ErrInvalidInput, provider)
	}
	current, err := s.Get()
	if err != nil {
		return err
	}
	apply(current)
	return s.Save(current)
}

// Set parses value according to key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s cannot be negative", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if value != "" && !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		parsed = p.String()
	case kindBackend:
		b := domain.StoreBackend(strings.ToLower(value))
		if !b.IsValid() {
			return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, value)
		}
		parsed = b.String()
	}

	if err := s.store.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("LLM provider %q is missing configuration", settings.LLM.Provider))
	}

	r := settings.Retrieval
	if r.ChunkSize <= 0 {
		errs = append(errs, errors.New("retrieval.chunk_size must be positive"))
	}
	if r.ChunkOverlap >= r.ChunkSize {
		errs = append(errs, errors.New("retrieval.chunk_overlap must be smaller than chunk_size"))
	}
	if r.TopK <= 0 {
		errs = append(errs, errors.New("retrieval.top_k must be positive"))
	}
	if r.SimilarityThreshold < -1 || r.SimilarityThreshold > 1 {
		errs = append(errs, errors.New("retrieval.similarity_threshold must be within [-1, 1]"))
	}
	if settings.Store.Backend == domain.StoreBackendPostgres && settings.Store.PostgresDSN == "" {
		errs = append(errs, errors.New("store.postgres_dsn is required for the postgres backend"))
	}
	if settings.Ingest.Workers <= 0 {
		errs = append(errs, errors.New("ingest.workers must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig pings the saved embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	return s.probe(func(a *domain.AppSettings) error { return s.validator.ValidateEmbedding(&a.Embedding) })
}

// ValidateLLMConfig pings the saved chat provider.
func (s *SettingsService) ValidateLLMConfig() error {
	return s.probe(func(a *domain.AppSettings) error { return s.validator.ValidateLLM(&a.LLM) })
}

func (s *SettingsService) probe(check func(*domain.AppSettings) error) error {
	if s.validator == nil {
		return nil
	}
	current, err := s.Get()
	if err != nil {
		return err
	}
	return check(current)
}

// baseURLFor keeps or fills the base URL for local providers and clears it
// for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	switch {
	case provider == domain.AIProviderOllama && current == "":
		return defaultOllamaURL
	case provider == domain.AIProviderOllama:
		return current
	default:
		return ""
	}
}

// reader falls back to a default when a key is absent or unusable.
type reader struct{ driven.ConfigReader }

func (r reader) str(key, def string) string {
	return cmp.Or(r.GetString(key), def)
}

// whole and real keep an explicit zero, unlike str.
func (r reader) whole(key string, def int) int {
	if _, ok := r.Get(key); !ok {
		return def
	}
	return r.GetInt(key)
}

func (r reader) real(key string, def float64) float64 {
	if _, ok := r.Get(key); !ok {
		return def
	}
	return r.GetFloat(key)
}

func (r reader) seconds(key string, def time.Duration) time.Duration {
	if n := r.GetInt(key); n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func (r reader) provider(key string, def domain.AIProvider) domain.AIProvider {
	if p := domain.AIProvider(r.GetString(key)); p.IsValid() {
		return p
	}
	return def
}

func (r reader) backend(def domain.StoreBackend) domain.StoreBackend {
	if b := domain.StoreBackend(r.GetString(KeyStoreBackend)); b.IsValid() {
		return b
	}
	return def
}

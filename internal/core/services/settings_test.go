package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/memory"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderHash, settings.Embedding.Provider)
	assert.Equal(t, "hash-256", settings.Embedding.Model)
	assert.Equal(t, domain.AIProvider(""), settings.LLM.Provider)
	assert.Equal(t, domain.DefaultTemperature, settings.LLM.Temperature)
	assert.Equal(t, domain.DefaultMaxTokens, settings.LLM.MaxTokens)
	assert.Equal(t, domain.DefaultTopK, settings.Retrieval.TopK)
	assert.Equal(t, domain.DefaultSimilarityThreshold, settings.Retrieval.SimilarityThreshold)
	assert.Equal(t, domain.StoreBackendSQLite, settings.Store.Backend)
	assert.Equal(t, domain.DefaultProviderTimeout, settings.Providers.Timeout)
	assert.Equal(t, domain.DefaultStreamTimeout, settings.Providers.StreamTimeout)
	assert.Equal(t, domain.DefaultIngestWorkers, settings.Ingest.Workers)
}

func TestSettingsService_Get_StoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyEmbedProvider:       "ollama",
		KeyLLMProvider:         "anthropic",
		KeyLLMAPIKey:           "sk-ant",
		KeyLLMTemperature:      0.0,
		KeyTopK:                8,
		KeySimilarityThreshold: 0.5,
		KeyStoreBackend:        "memory",
		KeyTimeoutSeconds:      30,
		KeyIngestWorkers:       2,
	})
	svc := NewSettingsService(store, nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
	assert.Equal(t, 0.0, settings.LLM.Temperature, "an explicit zero is kept")
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Equal(t, 0.5, settings.Retrieval.SimilarityThreshold)
	assert.Equal(t, domain.StoreBackendMemory, settings.Store.Backend)
	assert.Equal(t, 30*time.Second, settings.Providers.Timeout)
	assert.Equal(t, 2, settings.Ingest.Workers)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{KeyEmbedProvider: "cohere", KeyStoreBackend: "chroma"})
	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderHash, settings.Embedding.Provider)
	assert.Equal(t, domain.StoreBackendSQLite, settings.Store.Backend)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, nil)

	settings := svc.GetDefaults()
	settings.LLM.Provider = domain.AIProviderOpenAI
	settings.LLM.Model = "gpt-4o-mini"
	settings.LLM.APIKey = "sk-test"
	settings.Retrieval.HistoryTurns = 4
	require.NoError(t, svc.Save(&settings))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, got.LLM.Provider)
	assert.Equal(t, "sk-test", got.LLM.APIKey)
	assert.Equal(t, 4, got.Retrieval.HistoryTurns)

	_, hasEmbedKey := store.Get(KeyEmbedAPIKey)
	assert.False(t, hasEmbedKey, "empty API keys are not written")
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  domain.AIProvider
		model     string
		apiKey    string
		wantErr   bool
		wantURL   string
		wantModel string
	}{
		{name: "hash", provider: domain.AIProviderHash, wantModel: "hash-256"},
		{name: "ollama gets local url", provider: domain.AIProviderOllama, wantURL: "http://localhost:11434", wantModel: "nomic-embed-text"},
		{name: "openai with key", provider: domain.AIProviderOpenAI, apiKey: "sk", model: "text-embedding-3-large", wantModel: "text-embedding-3-large"},
		{name: "openai without key", provider: domain.AIProviderOpenAI, wantErr: true},
		{name: "anthropic has no embeddings", provider: domain.AIProviderAnthropic, apiKey: "k", wantErr: true},
		{name: "unknown", provider: "cohere", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSettingsService(memory.NewConfigStore(), nil)
			err := svc.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)

			settings, err := svc.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, tt.wantModel, settings.Embedding.Model)
			assert.Equal(t, tt.wantURL, settings.Embedding.BaseURL)
		})
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderOllama, "", ""))
	settings, _ := svc.Get()
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))
	settings, _ = svc.Get()
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL, "cloud providers use their own endpoint")

	assert.ErrorIs(t, svc.SetLLMProvider(domain.AIProviderHash, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetLLMProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, s *domain.AppSettings)
	}{
		{name: "int", key: KeyTopK, value: "7", check: func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 7, s.Retrieval.TopK)
		}},
		{name: "float", key: KeySimilarityThreshold, value: "0.45", check: func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 0.45, s.Retrieval.SimilarityThreshold)
		}},
		{name: "provider is lowercased", key: KeyLLMProvider, value: "Ollama", check: func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.AIProviderOllama, s.LLM.Provider)
		}},
		{name: "backend", key: KeyStoreBackend, value: "postgres", check: func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.StoreBackendPostgres, s.Store.Backend)
		}},
		{name: "seconds", key: KeyStreamTimeout, value: "90", check: func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 90*time.Second, s.Providers.StreamTimeout)
		}},
		{name: "string", key: KeyLLMModel, value: " llama3.1 ", check: func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, "llama3.1", s.LLM.Model)
		}},
		{name: "unknown key", key: "retrieval.rerank", value: "1", wantErr: true},
		{name: "not an int", key: KeyTopK, value: "five", wantErr: true},
		{name: "negative int", key: KeyIngestWorkers, value: "-1", wantErr: true},
		{name: "not a float", key: KeyLLMTemperature, value: "warm", wantErr: true},
		{name: "bad provider", key: KeyEmbedProvider, value: "cohere", wantErr: true},
		{name: "bad backend", key: KeyStoreBackend, value: "chroma", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSettingsService(memory.NewConfigStore(), nil)
			err := svc.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			settings, err := svc.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).Validate())
	})

	t.Run("collects every problem", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{
			KeyLLMProvider:   "openai",
			KeyChunkSize:     100,
			KeyChunkOverlap:  100,
			KeyStoreBackend:  "postgres",
			KeyIngestWorkers: 0,
		})
		err := NewSettingsService(store, nil).Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), `LLM provider "openai" is missing configuration`)
		assert.Contains(t, err.Error(), "chunk_overlap must be smaller")
		assert.Contains(t, err.Error(), "postgres_dsn is required")
		assert.Contains(t, err.Error(), "ingest.workers must be positive")
	})
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	validator := &mockValidator{llmErr: errBoom}
	svc := NewSettingsService(memory.NewConfigStore(), validator)

	assert.NoError(t, svc.ValidateEmbeddingConfig())
	assert.ErrorIs(t, svc.ValidateLLMConfig(), errBoom)
	assert.Equal(t, 1, validator.embedCalls)
	assert.Equal(t, 1, validator.llmCalls)

	noValidator := NewSettingsService(memory.NewConfigStore(), nil)
	assert.NoError(t, noValidator.ValidateLLMConfig())
}

func TestConfigKeys_Sorted(t *testing.T) {
	keys := ConfigKeys()
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, KeyLLMAPIKey)
	assert.Len(t, keys, len(configKeys))
}

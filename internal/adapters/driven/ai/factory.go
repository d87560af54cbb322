// Package ai turns provider settings into embedding and chat clients.
package ai

import (
	"context"
	"fmt"
	"time"

	hashembed "github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/embedding/openai"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/llm/ollama"
	openaillm "github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/llm/openai"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// pingTimeout bounds each connectivity probe.
const pingTimeout = 5 * time.Second

const fixHint = "Run 'coursemate settings' to fix"

type (
	embedderFunc func(*domain.EmbeddingSettings, domain.ProviderSettings) (driven.EmbeddingService, error)
	chatFunc     func(*domain.LLMSettings, domain.ProviderSettings) (driven.LLMService, error)
)

// embedders build the raw client. Network clients are rate limited by
// CreateEmbeddingService afterwards.
var embedders = map[domain.AIProvider]embedderFunc{
	domain.AIProviderOllama: func(e *domain.EmbeddingSettings, p domain.ProviderSettings) (driven.EmbeddingService, error) {
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{BaseURL: e.BaseURL, Model: e.Model, Timeout: p.Timeout}), nil
	},
	domain.AIProviderOpenAI: func(e *domain.EmbeddingSettings, p domain.ProviderSettings) (driven.EmbeddingService, error) {
		return openaiembed.NewEmbeddingService(openaiembed.Config{APIKey: e.APIKey, BaseURL: e.BaseURL, Model: e.Model, Timeout: p.Timeout})
	},
}

var chatters = map[domain.AIProvider]chatFunc{
	domain.AIProviderOllama: func(l *domain.LLMSettings, p domain.ProviderSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: l.BaseURL, Model: l.Model, Timeout: p.Timeout}), nil
	},
	domain.AIProviderOpenAI: func(l *domain.LLMSettings, p domain.ProviderSettings) (driven.LLMService, error) {
		return openaillm.NewLLMService(openaillm.Config{APIKey: l.APIKey, BaseURL: l.BaseURL, Model: l.Model, Timeout: p.Timeout})
	},
	domain.AIProviderAnthropic: func(l *domain.LLMSettings, p domain.ProviderSettings) (driven.LLMService, error) {
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: l.APIKey, BaseURL: l.BaseURL, Model: l.Model, Timeout: p.Timeout})
	},
}

// Clients are the provider connections for one run. LLM is nil when
// answering is unavailable.
type Clients struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Warnings  []string
}

// Close is safe on a partially filled Clients.
func (c *Clients) Close() {
	for _, closer := range []interface{ Close() error }{c.Embedding, c.LLM} {
		if closer != nil {
			_ = closer.Close()
		}
	}
}

// Connect builds both clients. Only a missing embedder is an error, and even
// an embedder that fails its ping is kept with a warning. Any LLM problem
// leaves LLM nil and adds a warning.
func Connect(ctx context.Context, settings domain.AppSettings) (*Clients, error) {
	embed, err := CreateEmbeddingService(&settings.Embedding, settings.Providers)
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	case embed == nil:
		return nil, fmt.Errorf("%w: embedding provider %q is not configured. %s",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider, fixHint)
	}

	c := &Clients{Embedding: embed}
	if err := ping(ctx, embed.Ping); err != nil {
		c.warn("embedding service unreachable: %v", err)
	}

	if !settings.LLM.IsConfigured() {
		c.warn("no LLM configured; asking questions is disabled")
		return c, nil
	}
	if c.LLM, err = CreateAndValidateLLMService(ctx, &settings.LLM, settings.Providers); err != nil {
		c.warn("%v", err)
	}
	return c, nil
}

func (c *Clients) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// CreateAndValidateLLMService returns a chat client that answered a ping, or
// an ErrLLMUnavailable error with a hint.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings, providers domain.ProviderSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings, providers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateEmbeddingService returns nil without error when no provider is set.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, providers domain.ProviderSettings) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderHash {
		return hashembed.NewEmbeddingService(domain.EmbeddingDimensions()[settings.Model]), nil
	}

	build, ok := embedders[settings.Provider]
	if !ok {
		if settings.Provider.CanChat() {
			return nil, fmt.Errorf("%s does not support embeddings, use hash, ollama or openai", settings.Provider)
		}
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	svc, err := build(settings, providers)
	if err != nil {
		return nil, err
	}
	return ratelimit.New(svc, ratelimit.Config{
		RequestsPerSecond: providers.EmbedRatePerSecond,
		Burst:             providers.EmbedBurst,
		MaxRetries:        ratelimit.DefaultMaxRetries,
	}), nil
}

// CreateLLMService returns nil without error for unconfigured settings,
// including a cloud provider without its key.
func CreateLLMService(settings *domain.LLMSettings, providers domain.ProviderSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := chatters[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	svc, err := build(settings, providers)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

package ai

import (
	"context"
	"time"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before the settings command saves
// them. Each check builds a throwaway client and probes the provider once.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator returns a validator that gives each probe pingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout returns a copy of v whose probes are bounded by d.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	if d <= 0 {
		return v
	}
	return &ConfigValidator{timeout: d}
}

// ValidateEmbedding probes the embedding provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(settings, domain.ProviderSettings{})
	if err != nil {
		return err
	}
	defer svc.Close()
	return v.probe(svc.Ping)
}

// ValidateLLM probes the chat provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(settings, domain.ProviderSettings{})
	if err != nil {
		return err
	}
	defer svc.Close()
	return v.probe(svc.Ping)
}

func (v *ConfigValidator) probe(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return fn(ctx)
}

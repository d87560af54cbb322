package driven

import "github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"

// AIConfigValidator probes a provider with candidate settings so a bad key or
// unreachable endpoint is reported before the settings are saved.
// Settings that are not configured are not probed and return nil.
type AIConfigValidator interface {
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
	ValidateLLM(settings *domain.LLMSettings) error
}

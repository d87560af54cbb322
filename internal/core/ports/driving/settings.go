package driving

import "github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"

// SettingsService backs the settings command. Keys use the dotted form of
// the config file, for example "retrieval.top_k".
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	GetDefaults() domain.AppSettings
	Save(settings *domain.AppSettings) error

	// Set parses value for key, checks it and persists it. Unknown keys and
	// out-of-range values are rejected with domain.ErrInvalidInput.
	Set(key, value string) error

	// SetEmbeddingProvider and SetLLMProvider switch provider in one step.
	// An empty model selects the provider's default.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the stored settings without touching the network.
	Validate() error

	// ValidateEmbeddingConfig and ValidateLLMConfig probe the configured
	// providers over the network.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}

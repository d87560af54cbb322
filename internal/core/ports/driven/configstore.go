package driven

// ConfigReader reads dotted keys such as "llm.provider" or
// "retrieval.top_k". Missing keys and type mismatches yield zero values.
type ConfigReader interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string
}

// ConfigStore is a ConfigReader backed by a persistent file.
// Set writes through to storage.
type ConfigStore interface {
	ConfigReader

	Set(key string, value any) error
	Save() error
	Load() error

	// Path is the backing file, empty for in-memory stores.
	Path() string
}

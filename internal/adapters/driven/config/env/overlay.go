// Package env layers environment variables over a driven.ConfigStore.
//
// Every dotted key can be overridden by COURSEMATE_<SECTION>_<KEY>, for
// example COURSEMATE_RETRIEVAL_TOP_K. The conventional variables
// OPENAI_API_KEY, ANTHROPIC_API_KEY, OLLAMA_HOST and DATABASE_URL are also
// honoured for the sections whose provider they belong to. Writes always go
// to the underlying store so the environment never leaks into config.toml.
package env

import (
	"os"
	"strconv"
	"strings"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Prefix starts every override variable.
const Prefix = "COURSEMATE_"

// LookupFunc reports the value of an environment variable.
type LookupFunc func(name string) (string, bool)

// Overlay reads from the environment first and the wrapped store second.
type Overlay struct {
	base   driven.ConfigStore
	lookup LookupFunc
}

// New wraps base with the process environment.
func New(base driven.ConfigStore) *Overlay {
	return NewWithLookup(base, os.LookupEnv)
}

// NewWithLookup wraps base with a custom variable source.
func NewWithLookup(base driven.ConfigStore, lookup LookupFunc) *Overlay {
	return &Overlay{base: base, lookup: lookup}
}

// VarName returns the override variable for a dotted key.
func VarName(key string) string {
	return Prefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// env returns the override for key, trying the prefixed name before any alias.
func (o *Overlay) env(key string) (string, bool) {
	if v, ok := o.lookup(VarName(key)); ok && v != "" {
		return v, true
	}
	for _, name := range o.aliases(key) {
		if v, ok := o.lookup(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// aliases returns the conventional variables that apply to key given the
// provider currently configured for its section.
func (o *Overlay) aliases(key string) []string {
	section, field, ok := strings.Cut(key, ".")
	if !ok {
		return nil
	}
	if key == "store.postgres_dsn" {
		return []string{"DATABASE_URL"}
	}
	if section != "embedding" && section != "llm" {
		return nil
	}

	provider := domain.AIProvider(o.GetString(section + ".provider"))
	switch {
	case field == "api_key" && provider == domain.AIProviderOpenAI:
		return []string{"OPENAI_API_KEY"}
	case field == "api_key" && provider == domain.AIProviderAnthropic:
		return []string{"ANTHROPIC_API_KEY"}
	case field == "base_url" && provider == domain.AIProviderOllama:
		return []string{"OLLAMA_HOST"}
	}
	return nil
}

// Get retrieves a value, preferring the environment. Overrides are strings.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.env(key); ok {
		return v, true
	}
	return o.base.Get(key)
}

// GetString retrieves a string value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.env(key); ok {
		return v
	}
	return o.base.GetString(key)
}

// GetInt retrieves an integer value. An override that does not parse is ignored.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.env(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return o.base.GetInt(key)
}

// GetFloat retrieves a floating point value.
func (o *Overlay) GetFloat(key string) float64 {
	if v, ok := o.env(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return o.base.GetFloat(key)
}

// GetBool retrieves a boolean value.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.env(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return o.base.GetBool(key)
}

// GetStringSlice retrieves a string slice. Overrides are comma separated.
func (o *Overlay) GetStringSlice(key string) []string {
	v, ok := o.env(key)
	if !ok {
		return o.base.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Set stores a value in the wrapped store.
func (o *Overlay) Set(key string, value any) error {
	return o.base.Set(key, value)
}

// Save persists the wrapped store.
func (o *Overlay) Save() error {
	return o.base.Save()
}

// Load reloads the wrapped store.
func (o *Overlay) Load() error {
	return o.base.Load()
}

// Path returns the wrapped store's path.
func (o *Overlay) Path() string {
	return o.base.Path()
}

// Overridden reports whether key currently comes from the environment.
func (o *Overlay) Overridden(key string) bool {
	_, ok := o.env(key)
	return ok
}

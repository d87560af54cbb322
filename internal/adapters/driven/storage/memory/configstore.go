package memory

import (
	"maps"
	"sync"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/config/configval"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Nothing is persisted, so Save and
// Load do nothing.
type ConfigStore struct {
	configval.Lookup

	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore copies every seed map into the store; later maps win.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	s.Lookup = s.Get
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }

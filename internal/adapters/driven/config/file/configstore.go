package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/config/configval"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds config.toml flattened to dotted keys: the [retrieval]
// table's top_k is "retrieval.top_k". Every Set rewrites the file.
type ConfigStore struct {
	configval.Lookup

	path string

	mu   sync.RWMutex
	data map[string]any
}

// NewConfigStore opens configDir/config.toml, creating configDir if needed.
// An empty configDir means ~/.coursemate.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		configDir = filepath.Join(home, ".coursemate")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", configDir, err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, "config.toml")}
	s.Lookup = s.Get
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set writes value and saves the file. If saving fails the previous value
// is restored.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = value
	if err := s.save(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the nested form to a temp file and renames it over the
// config. The caller holds s.mu.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nest(s.data))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Load replaces the in-memory values with the file's. A missing file loads
// as empty.
func (s *ConfigStore) Load() error {
	flat := make(map[string]any)
	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading %s: %w", s.path, err)
	default:
		var doc map[string]any
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", s.path, err)
		}
		flatten(doc, "", flat)
	}

	s.mu.Lock()
	s.data = flat
	s.mu.Unlock()
	return nil
}

// Keys lists the dotted keys present, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

func (s *ConfigStore) Path() string { return s.path }

// flatten turns {"a": {"b": 1}} into {"a.b": 1}.
func flatten(m map[string]any, prefix string, out map[string]any) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(nested, key, out)
			continue
		}
		out[key] = value
	}
}

// nest undoes flatten so the file keeps one table per section. When a key
// is both a scalar and a table prefix, the scalar is kept.
func nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	// Shorter keys first so a scalar wins over a deeper table.
	keys := slices.SortedFunc(maps.Keys(flat), func(a, b string) int { return len(a) - len(b) })

	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		ok := true
		for _, p := range parts[:len(parts)-1] {
			next, exists := node[p]
			if !exists {
				child := make(map[string]any)
				node[p] = child
				node = child
				continue
			}
			child, isMap := next.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node = child
		}
		if ok {
			node[parts[len(parts)-1]] = flat[key]
		}
	}
	return root
}

package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults/*.txt
var defaultsFS embed.FS

// defaultPrompts maps a prompt name to its built-in text, one entry per file
// under defaults/.
var defaultPrompts = mustLoadDefaults(defaultsFS, "defaults")

func mustLoadDefaults(fsys fs.FS, dir string) map[string]string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("reading embedded prompts: %v", err))
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			panic(fmt.Sprintf("reading embedded prompt %s: %v", e.Name(), err))
		}
		out[strings.TrimSuffix(e.Name(), ".txt")] = strings.TrimSpace(string(data))
	}
	return out
}

// promptReadme is written next to the seeded prompt files.
func promptReadme() string {
	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# coursemate prompts\n\n")
	b.WriteString("Edit a file here to change what coursemate sends to the model.\n")
	b.WriteString("Delete it to get the built-in text back the next time coursemate starts.\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s.txt\n", name)
	}
	fmt.Fprintf(&b, "\n%s is replaced with the retrieved course excerpts. Without it the\nexcerpts are appended after the prompt.\n", driven.ContextPlaceholder)
	return b.String()
}

// PromptStore serves prompt templates from files the user may edit, with
// the embedded defaults as fallback. Nothing touches the disk until the
// first Load, which seeds any missing files.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore uses dir, or ~/.coursemate/prompts when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		dir = filepath.Join(home, ".coursemate", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the user's version of name, or the default when the file is
// missing, blank or unreadable. Results are cached until Reload.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	text, err := s.readUser(name)
	if err != nil || text == "" {
		def, ok := defaultPrompts[name]
		if !ok {
			if err == nil {
				err = errors.New("file is empty")
			}
			return "", fmt.Errorf("prompt %q: %w", name, err)
		}
		text = def
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = text
	return text, nil
}

// Reload forgets cached prompts so the next Load rereads the files.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

func (s *PromptStore) Dir() string { return s.dir }

// seed writes the README and each default prompt that has no file yet.
// Existing files are never touched. A failure is kept so Load falls back to
// the defaults without retrying.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("creating %s: %w", s.dir, err)
		return
	}
	files := map[string]string{"README.md": promptReadme()}
	for name, text := range defaultPrompts {
		files[name+".txt"] = text + "\n"
	}
	for name, content := range files {
		p := filepath.Join(s.dir, name)
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			s.seedErr = fmt.Errorf("writing %s: %w", p, err)
			return
		}
	}
}

func (s *PromptStore) readUser(name string) (string, error) {
	if s.seedErr != nil {
		return "", s.seedErr
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

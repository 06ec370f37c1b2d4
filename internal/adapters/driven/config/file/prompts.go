package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptReadme = `# Coursemate prompts

course_system.txt is the system directive sent with every question. It decides
when the assistant searches the catalog and how it answers.

Edits are picked up on the next question. Delete or empty the file to go back
to the built-in directive. Conversation history is appended automatically.
`

var builtinPrompts = map[string]string{
	driven.PromptCourseSystem: driven.DefaultCourseSystemPrompt,
}

// promptEntry is a cached prompt and the file state it was read from.
type promptEntry struct {
	text    string
	modTime time.Time
	size    int64
}

// PromptStore serves system directives from <dir>/<name>.txt, seeding the
// directory with the built-in directives the first time it is read.
// A cached prompt is reread whenever its file changes on disk.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]promptEntry
}

// NewPromptStore returns a store rooted at dir, or ~/.coursemate/prompts when
// dir is empty. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".coursemate", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]promptEntry)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named directive. Missing, empty or unreadable files fall
// back to the built-in text; names with no built-in must exist on disk.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	builtin, hasBuiltin := builtinPrompts[name]
	if s.seedErr != nil {
		if hasBuiltin {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt %q: %w", name, s.seedErr)
	}

	text, err := s.read(name)
	switch {
	case err == nil && text != "":
		return text, nil
	case hasBuiltin:
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("prompt %s unreadable, using built-in: %v", name, err)
		}
		return builtin, nil
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	default:
		return "", fmt.Errorf("load prompt %q: file is empty", name)
	}
}

// Reload drops every cached prompt.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]promptEntry)
	s.mu.Unlock()
}

// read returns the trimmed file contents, using the cache while the file's
// size and modification time are unchanged.
func (s *PromptStore) read(name string) (string, error) {
	path := s.path(name)
	info, err := os.Stat(path)
	if err != nil {
		s.forget(name)
		return "", err
	}

	s.mu.Lock()
	entry, ok := s.cache[name]
	s.mu.Unlock()
	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	entry = promptEntry{
		text:    strings.TrimSpace(string(data)),
		modTime: info.ModTime(),
		size:    info.Size(),
	}
	s.mu.Lock()
	s.cache[name] = entry
	s.mu.Unlock()
	return entry.text, nil
}

func (s *PromptStore) forget(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed creates the directory and writes any built-in prompt or README that
// is not already there. Existing files are never touched.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{"README.md": promptReadme}
	for name, text := range builtinPrompts {
		files[name+".txt"] = text + "\n"
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			s.seedErr = fmt.Errorf("write %s: %w", file, err)
			return
		}
	}
}

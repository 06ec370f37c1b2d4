// Package coursedir reads course files from a local directory tree.
package coursedir

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Ensure interfaces are implemented.
var (
	_ driven.CourseSource        = (*Source)(nil)
	_ driven.CourseSourceFactory = (*Factory)(nil)
)

// Factory opens directory sources that accept a fixed set of MIME types.
type Factory struct {
	mimeTypes []string
}

// NewFactory creates a factory. An empty mimeTypes accepts every file.
func NewFactory(mimeTypes []string) *Factory {
	return &Factory{mimeTypes: mimeTypes}
}

// Open returns a source rooted at dir. dir must exist and be a directory.
func (f *Factory) Open(dir string) (driven.CourseSource, error) {
	root := ResolvePath(dir)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}
	return New(root, f.mimeTypes), nil
}

// Source lists and watches course files under a root directory.
// Hidden files and directories are skipped.
type Source struct {
	rootPath string
	accept   map[string]bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a source rooted at rootPath.
func New(rootPath string, mimeTypes []string) *Source {
	s := &Source{rootPath: rootPath}
	if len(mimeTypes) > 0 {
		s.accept = make(map[string]bool, len(mimeTypes))
		for _, m := range mimeTypes {
			s.accept[m] = true
		}
	}
	return s
}

// List returns every accepted file ordered by path.
func (s *Source) List(ctx context.Context) ([]domain.RawDocument, error) {
	var docs []domain.RawDocument

	err := filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != s.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		mimeType := detectMIMEType(path)
		if !s.accepts(mimeType) {
			logger.Debug("Skipping %s: unsupported type %s", path, mimeType)
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read %s: %v", path, err)
			return nil
		}
		docs = append(docs, domain.RawDocument{URI: path, MIMEType: mimeType, Content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs, nil
}

// Watch streams file changes until ctx is cancelled or the source is closed.
func (s *Source) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	err = filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.rootPath && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.rootPath, err)
	}

	s.mu.Lock()
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.watcher = watcher
	s.mu.Unlock()

	changes := make(chan domain.RawDocumentChange)
	go s.run(ctx, watcher, changes)
	return changes, nil
}

func (s *Source) run(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- domain.RawDocumentChange) {
	defer close(changes)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("Failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			change := s.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleFsEvent maps a filesystem event to a document change.
// Returns nil for events that do not affect an accepted file.
func (s *Source) handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	if rel, err := filepath.Rel(s.rootPath, event.Name); err != nil || isHidden(rel) {
		return nil
	}
	mimeType := detectMIMEType(event.Name)
	if !s.accepts(mimeType) {
		return nil
	}

	doc := domain.RawDocument{URI: event.Name, MIMEType: mimeType}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.RawDocumentChange{Type: domain.ChangeDeleted, Document: doc}

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		content, err := os.ReadFile(event.Name)
		if err != nil {
			logger.Warn("Failed to read %s: %v", event.Name, err)
			return nil
		}
		doc.Content = content
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.RawDocumentChange{Type: changeType, Document: doc}
	}

	return nil
}

// Close stops any active watch.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

func (s *Source) accepts(mimeType string) bool {
	return s.accept == nil || s.accept[mimeType]
}

// extensionMIMETypes covers course file extensions the mime package does not
// map consistently across platforms.
var extensionMIMETypes = map[string]string{
	"":          "text/plain",
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".htm":      "text/html",
	".html":     "text/html",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// detectMIMEType returns the MIME type for a file name, without parameters.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if m, ok := extensionMIMETypes[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		if i := strings.Index(m, ";"); i >= 0 {
			m = m[:i]
		}
		return strings.TrimSpace(m)
	}
	return "application/octet-stream"
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/coursemate/internal/adapters/driven/ai"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/index"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/keyword/bleve"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/sqlite"
	memstore "github.com/custodia-labs/coursemate/internal/adapters/driven/storage/memory"
	memvector "github.com/custodia-labs/coursemate/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/cli"
	"github.com/custodia-labs/coursemate/internal/connectors/coursedir"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/services"
	"github.com/custodia-labs/coursemate/internal/logger"
	"github.com/custodia-labs/coursemate/internal/normalisers"
	"github.com/custodia-labs/coursemate/internal/postprocessors"
)

const (
	// homeEnv overrides the default ~/.coursemate directory.
	homeEnv = "COURSEMATE_HOME"

	// ephemeralEnv keeps courses and sessions in memory for the life of the process.
	ephemeralEnv = "COURSEMATE_EPHEMERAL"
)

// container owns every adapter built for one process.
type container struct {
	services *cli.Services
	closers  []func() error
}

// Close releases adapters in reverse construction order.
func (c *container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *container) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// resolveHome returns the coursemate data directory.
func resolveHome() (string, error) {
	if dir := os.Getenv(homeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".coursemate"), nil
}

// newContainer wires the application under home.
// A missing or broken model configuration leaves Query nil with QueryErr set,
// so settings, ingest and catalog commands keep working.
func newContainer(ctx context.Context, home string) (*container, error) {
	c := &container{services: &cli.Services{}}
	ok := false
	defer func() {
		if !ok {
			_ = c.Close()
		}
	}()

	var configStore driven.ConfigStore
	fileConfig, err := file.NewConfigStore(home)
	if err != nil {
		logger.Warn("config unavailable, using defaults: %v", err)
		configStore = memstore.NewConfigStore()
	} else {
		configStore = fileConfig
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	c.services.Settings = settingsService

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	courseStore, sessionStore, err := c.openStores(home)
	if err != nil {
		return nil, err
	}

	var (
		embedder driven.EmbeddingService
		model    driven.ModelClient
	)
	result, initErr := ai.Init(settings, false)
	if initErr != nil {
		logger.Warn("model unavailable: %v", initErr)
		c.services.QueryErr = fmt.Errorf("%w: %v; run 'coursemate settings llm'", domain.ErrLLMUnavailable, initErr)
		e, embedErr := ai.CreateEmbeddingService(&settings.Embedding)
		if embedErr != nil {
			logger.Warn("embedding service unavailable: %v", embedErr)
		} else {
			embedder = e
		}
	} else {
		embedder, model = result.EmbeddingService, result.ModelClient
	}
	if embedder != nil {
		c.onClose(embedder.Close)
	}
	if model != nil {
		c.onClose(model.Close)
	}

	vectors, err := newVectorIndex(settings.Index)
	if err != nil {
		return nil, err
	}
	c.onClose(vectors.Close)

	keyword, err := bleve.New()
	if err != nil {
		return nil, err
	}
	c.onClose(keyword.Close)

	idx := index.New(courseStore, keyword, vectors, embedder, index.Options{MaxResults: settings.Index.MaxResults})
	rebuild := index.RebuildOptions{Vectors: settings.Index.Backend != domain.IndexBackendQdrant && embedder != nil}
	if err := idx.Rebuild(ctx, rebuild); err != nil {
		return nil, fmt.Errorf("rebuilding index: %w", err)
	}

	chunker, err := postprocessors.NewChunker(settings.Index.ChunkStrategy, settings.Index.ChunkSize, settings.Index.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("building chunker: %w", err)
	}
	registry := normalisers.NewDefaultRegistry()

	sessions := services.NewSessionService(sessionStore, settings.Chat.MaxHistory)
	c.services.Sessions = sessions
	c.services.Catalog = services.NewCatalogService(idx)
	c.services.Ingest = services.NewIngestService(
		coursedir.NewFactory(registry.MIMETypes()),
		registry,
		chunker,
		courseStore,
		keyword,
		vectors,
		embedder,
	)

	if model != nil {
		prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
		if err != nil {
			return nil, fmt.Errorf("opening prompts: %w", err)
		}
		c.services.Query = services.NewQueryService(services.NewOrchestrator(model), idx, sessions, prompts)
	}

	ok = true
	return c, nil
}

// openStores returns the catalog and session stores, in memory when
// ephemeralEnv is set and in SQLite under home otherwise.
func (c *container) openStores(home string) (driven.CourseStore, driven.SessionStore, error) {
	if ephemeral, _ := strconv.ParseBool(os.Getenv(ephemeralEnv)); ephemeral {
		logger.Debug("using in-memory course and session stores")
		return memstore.NewCourseStore(), memstore.NewSessionStore(), nil
	}

	store, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	c.onClose(store.Close)
	return store.CourseStore(), store.SessionStore(), nil
}

func newVectorIndex(cfg domain.IndexSettings) (driven.VectorIndex, error) {
	if cfg.Backend == domain.IndexBackendQdrant {
		v, err := qdrant.New(cfg.QdrantAddr)
		if err != nil {
			return nil, fmt.Errorf("connecting to qdrant: %w", err)
		}
		return v, nil
	}
	return memvector.NewVectorIndex(), nil
}

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// ToolRegistry dispatches tool calls by name and preserves registration order.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// NewCourseTools returns a registry holding a fresh content search tool and
// outline tool over index. Each query should use its own registry so no
// citation state is shared between concurrent queries.
func NewCourseTools(index driven.SemanticIndex) *ToolRegistry {
	r := NewToolRegistry()
	r.MustRegister(NewCourseSearchTool(index))
	r.MustRegister(NewCourseOutlineTool(index))
	return r
}

// Register adds a tool keyed by its declared name.
// Registering a name twice replaces the tool in place.
func (r *ToolRegistry) Register(tool Tool) error {
	name := tool.Definition().Name
	if name == "" {
		return domain.ErrToolNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
	return nil
}

// MustRegister is like Register but panics on error.
func (r *ToolRegistry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("register tool: %v", err))
	}
}

// Definitions returns the schema of every tool in registration order.
func (r *ToolRegistry) Definitions() []domain.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]domain.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Execute dispatches to the named tool. An unknown name is reported as text.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]any) (domain.ToolOutput, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		logger.Warn("Tool %q not registered", name)
		return domain.TextOutput(fmt.Sprintf("Tool '%s' not found", name)), nil
	}
	return tool.Execute(ctx, args)
}

// LastCitations returns the first non-empty citation list in registration order.
func (r *ToolRegistry) LastCitations() []domain.Citation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		src, ok := r.tools[name].(CitationSource)
		if !ok {
			continue
		}
		if c := src.LastCitations(); len(c) > 0 {
			return c
		}
	}
	return nil
}

// ResetCitations clears the citations of every tool that keeps them.
func (r *ToolRegistry) ResetCitations() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if src, ok := r.tools[name].(CitationSource); ok {
			src.ResetCitations()
		}
	}
}

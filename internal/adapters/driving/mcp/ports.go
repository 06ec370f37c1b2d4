package mcp

import (
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog provides course search and outlines.
	Catalog driving.CatalogService

	// Query answers questions end to end. Optional; the ask tool is
	// registered only when set.
	Query driving.QueryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}

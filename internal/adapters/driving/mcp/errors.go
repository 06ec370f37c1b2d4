// Package mcp provides an MCP (Model Context Protocol) server adapter for coursemate.
// It lets AI assistants search course materials and read course outlines.
package mcp

import "errors"

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("mcp: catalog service is required")

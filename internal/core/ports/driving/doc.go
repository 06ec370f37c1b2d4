// Package driving holds the service interfaces the CLI, HTTP API, MCP server
// and terminal UI call into. internal/core/services implements them.
package driving

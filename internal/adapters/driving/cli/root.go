// Package cli provides the command-line interface for coursemate.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services injected by the composition root. Any of them may be nil when the
// backing configuration is incomplete; commands report that instead of panicking.
var (
	queryService    driving.QueryService
	sessionService  driving.SessionService
	catalogService  driving.CatalogService
	ingestService   driving.IngestService
	settingsService driving.SettingsService

	// queryErr explains why queryService is nil.
	queryErr error
)

// Services groups the driving ports the commands depend on.
type Services struct {
	Query    driving.QueryService
	Sessions driving.SessionService
	Catalog  driving.CatalogService
	Ingest   driving.IngestService
	Settings driving.SettingsService

	// QueryErr is reported by commands that need Query when it is nil.
	QueryErr error
}

var rootCmd = &cobra.Command{
	Use:   "coursemate",
	Short: "Ask questions about your course materials",
	Long: `Coursemate ingests course transcripts and answers questions about them.

Answers come from a language model that can search course content and read
course outlines, and every answer lists the lessons it drew from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices wires the driving ports used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	queryService = s.Query
	sessionService = s.Sessions
	catalogService = s.Catalog
	ingestService = s.Ingest
	settingsService = s.Settings
	queryErr = s.QueryErr
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// requireQuery returns the query service or the reason it is missing.
func requireQuery() (driving.QueryService, error) {
	if queryService != nil {
		return queryService, nil
	}
	if queryErr != nil {
		return nil, queryErr
	}
	return nil, errors.New("query service not configured; run 'coursemate settings llm'")
}

// commandContext returns the command context, falling back to Background
// when the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

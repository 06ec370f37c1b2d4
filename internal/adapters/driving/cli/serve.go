package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API used by the web front end.

Endpoints:
  POST /api/query    - Ask a question
  GET  /api/courses  - Course catalog statistics
  GET  /api/health   - Liveness check

Port, CORS origin, static directory and rate limit come from settings
(server.*); --port overrides the configured port.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	cfg := httpapi.Config{Port: domain.DefaultServerPort}
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cfg = httpapi.Config{
			Port:              settings.Server.Port,
			CORSOrigin:        settings.Server.CORSOrigin,
			StaticDir:         settings.Server.StaticDir,
			RequestsPerSecond: settings.Server.RequestsPerSecond,
		}
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if port > 0 {
		cfg.Port = port
	}

	if queryService == nil && queryErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v; /api/query will answer 503\n", queryErr)
	}

	server, err := httpapi.NewServer(&httpapi.Ports{Query: queryService, Catalog: catalogService}, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on http://localhost%s\n", server.Addr())
	return server.Run(commandContext(cmd))
}

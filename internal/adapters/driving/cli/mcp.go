package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the course catalog to other assistants",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Runs a Model Context Protocol server offering the search_course_content
and get_course_outline tools, the course list and outline resources, and
an ask tool when a language model is configured.

JSON-RPC over stdio is the default. --listen or --port switch to streamable
HTTP, e.g. for the MCP Inspector:

  coursemate mcp serve
  coursemate mcp serve --port 8080
  coursemate mcp serve --listen 0.0.0.0:8080

Register the stdio form with a client as:

  {"mcpServers": {"coursemate": {"command": "coursemate", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

var (
	mcpListen string
	mcpPort   int
)

func init() {
	mcpServeCmd.Flags().StringVar(&mcpListen, "listen", "", "serve HTTP on this host:port instead of stdio")
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on localhost at this port")
	mcpServeCmd.MarkFlagsMutuallyExclusive("listen", "port")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// listenAddr resolves the HTTP address, or "" for stdio.
func listenAddr(listen string, port int) (string, error) {
	switch {
	case listen != "":
		if _, _, err := net.SplitHostPort(listen); err != nil {
			return "", fmt.Errorf("invalid --listen %q: %w", listen, err)
		}
		return listen, nil
	case port < 0 || port > 65535:
		return "", fmt.Errorf("invalid --port %d", port)
	case port > 0:
		return net.JoinHostPort("localhost", strconv.Itoa(port)), nil
	default:
		return "", nil
	}
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}
	addr, err := listenAddr(mcpListen, mcpPort)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Catalog: catalogService, Query: queryService})
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if addr == "" {
		return server.Run(ctx)
	}

	// stdout is free in HTTP mode.
	if queryService == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No language model configured; the ask tool is disabled.")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}

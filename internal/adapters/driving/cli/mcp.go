package cli

import (
	"github.com/spf13/cobra"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/mcp"
)

var mcpListen string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search to MCP clients",
	Long: `Serve semantic search to AI assistants over the Model Context Protocol.

The server speaks JSON-RPC on stdio unless --listen is given, in which case
it serves streamable HTTP at ` + mcp.EndpointPath + ` and a JSON health check at ` + mcp.HealthPath + `.
Reconciliation runs in the background while the server is up.

Tools:
  search        semantic search with faculty, year and module filters
  index_status  vector store readiness and counts

Resources:
  learnbox://resources        every catalogued resource
  learnbox://resources/{id}   one resource record

Examples:
  learnbox-search mcp serve
  learnbox-search mcp serve --listen localhost:8080

Desktop client configuration:
  {
    "mcpServers": {
      "learnbox": {
        "command": "/path/to/learnbox-search",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVarP(&mcpListen, "listen", "l", "", "serve HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Search:    searchService,
		Resources: resourceService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	runBackground(cmd.Context())

	if mcpListen == "" {
		return server.Run(cmd.Context())
	}
	cmd.Printf("MCP server listening on http://%s%s\n", mcpListen, mcp.EndpointPath)
	return server.RunHTTP(cmd.Context(), mcpListen)
}

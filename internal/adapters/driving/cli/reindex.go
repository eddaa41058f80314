package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Revectorize every resource",
	Long: `Queue every catalogued resource for revectorization.
Use after changing the embedding model or chunking settings.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if resourceService == nil {
		return errResourceNotConfigured
	}

	n, err := resourceService.Reindex(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex failed after %d resource(s): %w", n, err)
	}

	cmd.Printf("Queued %d resource(s) for revectorization.\n", n)
	return nil
}

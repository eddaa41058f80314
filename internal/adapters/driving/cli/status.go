package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vector index status",
	Long:  `Reports whether the vector store is ready and how many items, documents and queued tasks it holds.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errSearchNotConfigured
	}

	status, err := searchService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	ready := successStyle.Render("ready")
	if !status.Ready {
		ready = warningStyle.Render("not ready")
	}

	cmd.Println(titleStyle.Render("Index Status"))
	cmd.Printf("  Store:     %s\n", ready)
	cmd.Printf("  Items:     %d\n", status.ItemCount)
	cmd.Printf("  Documents: %d\n", status.DocumentCount)
	cmd.Printf("  Pending:   %d\n", status.PendingTasks)
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

var errMaintenanceNotConfigured = errors.New("maintenance service not configured")

var reconcileHistory int

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove index entries for deleted resources",
	Long: `Find indexed documents that are no longer in the catalogue and queue
them for devectorization. This also runs in the background while the TUI,
MCP server or watcher is active.

With --history, show recent runs instead of starting one.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().IntVar(&reconcileHistory, "history", 0, "show the last N runs")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if maintenance == nil {
		return errMaintenanceNotConfigured
	}

	if reconcileHistory > 0 {
		runs, err := maintenance.History(cmd.Context(), reconcileHistory)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		printRuns(cmd, runs)
		return nil
	}

	run, err := maintenance.Reconcile(cmd.Context())
	if err != nil {
		return err
	}
	if run.Orphans == 0 {
		cmd.Println("Index is consistent with the catalogue.")
		return nil
	}
	cmd.Printf("Queued %d orphaned document(s) for removal.\n", run.Orphans)
	return nil
}

func printRuns(cmd *cobra.Command, runs []domain.JobRun) {
	if len(runs) == 0 {
		cmd.Println(mutedStyle.Render("No reconcile runs recorded."))
		return
	}

	cmd.Println(titleStyle.Render("Reconcile History"))
	for _, run := range runs {
		outcome := successStyle.Render(fmt.Sprintf("%d orphan(s)", run.Orphans))
		if !run.OK() {
			outcome = warningStyle.Render("failed: " + run.Err)
		}
		cmd.Printf("  %s  %6s  %s\n",
			run.Started.Local().Format(time.DateTime),
			run.Took().Round(time.Millisecond),
			outcome)
	}
}

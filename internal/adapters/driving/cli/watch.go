package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/watcher"
)

var (
	watchDebounce time.Duration
	watchFileURIs bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch an upload directory",
	Long: `Watch an upload directory and revectorize resources whose files change.

Created or written files are matched against resource locators. Resources
are added with "resource add"; the watcher only reports content changes.
Scheduled index maintenance runs while watching.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is reported")
	watchCmd.Flags().BoolVar(&watchFileURIs, "file-uris", true, "also match file:// locators")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if resourceService == nil {
		return errResourceNotConfigured
	}

	opts := []watcher.Option{watcher.WithDebounce(watchDebounce)}
	if watchFileURIs {
		opts = append(opts, watcher.WithFileURIs())
	}

	w, err := watcher.New(args[0], resourceService, opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runBackground(ctx)

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", w.Root())
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui"
)

var (
	tuiLimit int
	tuiQuery string
)

// runTUIProgram starts bubbletea. Tests swap it out.
var runTUIProgram = func(app *tui.App) error {
	return app.Run()
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Search resources interactively",
	Long: `Open the interactive search screen.

Type a query and press Enter. Facets narrow the results:

  derivatives faculty:science year:1 module:MATH101

Keys while typing:
  Enter    search        ↑/↓  earlier queries     Esc  browse results

Keys on results:
  ↑/k ↓/j  move          Enter  open              n or /  new query
  ?        help          q      quit

On an open result, r queues the resource for revectorization and g/G jump
to the top or bottom.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiLimit, "limit", "n", 10, "results per search")
	tuiCmd.Flags().StringVarP(&tuiQuery, "query", "q", "", "pre-fill the query")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	app, err := tui.NewApp(tui.NewPorts(searchService, resourceService))
	if err != nil {
		return err
	}
	app.WithContext(cmd.Context()).WithLimit(tuiLimit).WithQuery(tuiQuery)

	runBackground(cmd.Context())

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "TUI panic: %v\n%s\n", r, debug.Stack())
			err = fmt.Errorf("TUI panicked: %v", r)
		}
	}()
	if err := runTUIProgram(app); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

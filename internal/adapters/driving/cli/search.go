package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchFaculty string
	searchYear    string
	searchModule  string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search learning resources",
	Long: `Performs semantic search across all vectorized learning resources.
The query is embedded and compared with every stored chunk; documents are
ranked by a blend of their average and best chunk similarity.

Use --faculty, --year and --module to narrow results. "all" matches anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchFaculty, "faculty", "", "only resources from this faculty")
	searchCmd.Flags().StringVar(&searchYear, "year", "", "only resources for this academic year")
	searchCmd.Flags().StringVar(&searchModule, "module", "", "only resources for this module")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errSearchNotConfigured
	}

	filters := domain.SearchFilters{
		FacultyID: searchFaculty,
		Year:      searchYear,
		ModuleID:  searchModule,
	}

	results, err := searchService.Search(cmd.Context(), query, filters, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

// searchResultJSON is the --json shape of one result.
type searchResultJSON struct {
	ResourceID    string   `json:"resource_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Locator       string   `json:"locator"`
	FacultyID     string   `json:"faculty_id,omitempty"`
	Year          string   `json:"year,omitempty"`
	ModuleID      string   `json:"module_id,omitempty"`
	Relevance     float64  `json:"relevance"`
	ChunkCount    int      `json:"chunk_count"`
	MatchedChunks []string `json:"matched_chunks,omitempty"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		doc := results[i].Document
		out[i] = searchResultJSON{
			ResourceID:    doc.ID,
			Title:         doc.Title,
			Description:   doc.Description,
			Locator:       doc.Locator,
			FacultyID:     doc.FacultyID,
			Year:          doc.Year,
			ModuleID:      doc.ModuleID,
			Relevance:     results[i].RelevanceScore,
			ChunkCount:    results[i].ChunkCount,
			MatchedChunks: results[i].MatchedChunks,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println(titleStyle.Render("Results:"))
	cmd.Println()
	for i := range results {
		// Format: [N] Title (Score)
		doc := results[i].Document
		title := doc.Title
		if title == "" {
			title = doc.ID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, subtitleStyle.Render(title), results[i].RelevanceScore)
		if tags := resourceTags(doc); tags != "" {
			cmd.Printf("      %s\n", mutedStyle.Render(tags))
		}
		cmd.Printf("      %s\n", mutedStyle.Render(doc.Locator))
		if len(results[i].MatchedChunks) > 0 {
			cmd.Println(excerptStyle.Render(results[i].MatchedChunks[0]))
		}
		cmd.Println()
	}

	return nil
}

// resourceTags formats faculty, year and module as "science · year 2 · MATH201".
func resourceTags(doc domain.SourceDocument) string {
	var parts []string
	if doc.FacultyID != "" {
		parts = append(parts, doc.FacultyID)
	}
	if doc.Year != "" {
		parts = append(parts, "year "+doc.Year)
	}
	if doc.ModuleID != "" {
		parts = append(parts, doc.ModuleID)
	}
	return strings.Join(parts, " · ")
}

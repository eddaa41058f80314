// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/styles"
	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// linesPerResult is the rendered height of one result.
const linesPerResult = 3

// ResultList displays ranked search results in a navigable list.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "home", "g":
			r.selected = 0
		case "end", "G":
			if len(r.results) > 0 {
				r.selected = len(r.results) - 1
			}
		}
	}
	return r, nil
}

// View renders the visible window of results around the selection.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.results)*linesPerResult+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")

	start, end := r.window()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	return strings.Join(lines, "\n")
}

// window returns the [start, end) range of results that fit the height.
func (r *ResultList) window() (int, int) {
	visible := max((r.height-2)/linesPerResult, 1)

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))
	return start, end
}

// renderResult formats one result as title, facet line and excerpt.
func (r *ResultList) renderResult(index int, result *domain.SearchResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := result.Document.Title
	if title == "" {
		title = result.Document.ID
	}
	titleWidth := max(r.width-16, 10)
	title = fmt.Sprintf("%s[%d] %-*s", indicator, index+1, titleWidth, Truncate(title, titleWidth))
	score := fmt.Sprintf("%.2f", result.RelevanceScore)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(title + "  " + score)
	} else {
		titleLine = r.styles.Normal.Render(title+"  ") + r.styles.ScoreStyle(result.RelevanceScore).Render(score)
	}

	facets := Facets(result.Document)
	if result.ChunkCount > 1 {
		facets = append(facets, fmt.Sprintf("%d chunks", result.ChunkCount))
	}
	tagLine := r.styles.Tag.Render("    " + strings.Join(facets, " · "))

	preview := ""
	if len(result.MatchedChunks) > 0 {
		preview = flatten(result.MatchedChunks[0])
	}
	previewLine := r.styles.Excerpt.Render(Truncate(preview, max(r.width-6, 20)))

	return titleLine + "\n" + tagLine + "\n" + previewLine
}

// Facets lists the non-empty faculty, year and module of a document.
func Facets(doc domain.SourceDocument) []string {
	var out []string
	if doc.FacultyID != "" {
		out = append(out, doc.FacultyID)
	}
	if doc.Year != "" {
		out = append(out, "year "+doc.Year)
	}
	if doc.ModuleID != "" {
		out = append(out, doc.ModuleID)
	}
	return out
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// flatten collapses whitespace runs so an excerpt fits one line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index if it is in range.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}

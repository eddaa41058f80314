// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/components/input"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/components/list"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/components/status"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/keymap"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/messages"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/styles"
	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
)

// ErrNoSearchService is reported when a query is submitted without a backend.
var ErrNoSearchService = errors.New("search service is required")

// View is the search view: query input, ranked results and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context
	limit         int

	filters    domain.SearchFilters
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = navigating results
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for searches.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithLimit sets the maximum number of results. Zero uses the service default.
func (v *View) WithLimit(limit int) *View {
	v.limit = limit
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.StatusLoaded:
		if msg.Err == nil {
			v.statusbar.SetIndexStatus(msg.Status)
		}
		return v, nil

	case messages.RevectorizeQueued:
		if msg.Err == nil {
			v.statusbar.SetMessage(fmt.Sprintf("Queued %d resource(s) for revectorization", msg.Count))
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input for the focused area.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, v.keymap.Open):
		result := v.list.SelectedResult()
		if result == nil {
			return v, nil
		}
		return v, messages.Send(messages.ResultSelected{Result: *result})
	case key.Matches(msg, v.keymap.NewSearch), msg.Type == tea.KeyEsc:
		return v, v.focus()
	case key.Matches(msg, v.keymap.Quit):
		return v, messages.Send(messages.Quit{})
	case key.Matches(msg, v.keymap.Help):
		return v, messages.SwitchTo(messages.ViewHelp)
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// handleInputKey processes keys while the query input has focus.
func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		raw := v.input.Value()
		if raw == "" {
			return v, nil
		}
		v.input.Remember(raw)
		query, filters := ParseQuery(raw)
		v.filters = filters
		v.statusbar.SetState(status.StateSearching)
		return v, v.performSearch(query, filters)

	case tea.KeyEsc:
		if v.list.IsEmpty() {
			return v, messages.Send(messages.Quit{})
		}
		v.blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// performSearch runs the query off the update loop.
func (v *View) performSearch(query string, filters domain.SearchFilters) tea.Cmd {
	svc, ctx, limit := v.searchService, v.ctx, v.limit
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := svc.Search(ctx, query, filters, limit)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

// handleSearchCompleted shows results, or keeps the input focused on error.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) focus() tea.Cmd {
	v.focusInput = true
	v.statusbar.SetHints(v.keymap.ShortHelp())
	return v.input.Focus()
}

func (v *View) blur() {
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("LearnBox Search"), "", v.input.View())

	if f := v.renderFilters(); f != "" {
		sections = append(sections, f)
	}
	sections = append(sections, "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderFilters shows the facet filters applied to the last search.
func (v *View) renderFilters() string {
	facets := list.Facets(domain.SourceDocument{
		FacultyID: v.filters.FacultyID,
		Year:      v.filters.Year,
		ModuleID:  v.filters.ModuleID,
	})
	if len(facets) == 0 {
		return ""
	}
	out := v.styles.Muted.Render("Filters: ")
	for i, f := range facets {
		if i > 0 {
			out += v.styles.Muted.Render(" · ")
		}
		out += v.styles.Tag.Render(f)
	}
	return out
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-11) // header, input, filters, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the raw input.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the raw input.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Filters returns the facet filters of the last submitted query.
func (v *View) Filters() domain.SearchFilters {
	return v.filters
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset clears the query and results and focuses the input.
func (v *View) Reset() {
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.filters = domain.SearchFilters{}
	v.err = nil
	v.statusbar.Clear()
	v.focus()
}

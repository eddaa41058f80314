package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/keymap"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/messages"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/styles"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/views/detail"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/views/search"
	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// statusRefresh is how often the index status in the status bar is reloaded.
const statusRefresh = 5 * time.Second

// statusTick triggers a status reload.
type statusTick struct{}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	searchView *search.View
	detailView *detail.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		searchView:  search.NewView(s, km, ports.Search),
		detailView:  detail.NewView(s, km, ports.Resources),
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.detailView.WithContext(ctx)
	return a
}

// WithLimit sets the number of results requested per search.
func (a *App) WithLimit(limit int) *App {
	a.searchView.WithLimit(limit)
	return a
}

// WithQuery pre-fills the query input.
func (a *App) WithQuery(query string) *App {
	a.searchView.SetQuery(query)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("learnbox-search"),
		a.searchView.Init(),
		a.loadStatus(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		return a, a.handleKey(msg)

	case messages.ResultSelected:
		a.detailView.SetResult(msg.Result)
		a.currentView = messages.ViewDetail
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.RevectorizeQueued:
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.detailView, _ = a.detailView.Update(msg)
		a.searchView, _ = a.searchView.Update(msg)
		return a, a.fetchStatus()

	case messages.StatusLoaded:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case statusTick:
		return a, a.loadStatus()

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewDetail {
			a.detailView, cmd = a.detailView.Update(msg)
		} else {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.SearchCompleted:
		a.err = msg.Err
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Cursor blinks and other component messages belong to the input.
	a.searchView, cmd = a.searchView.Update(msg)
	return a, cmd
}

// handleKey routes a key press to the active view.
func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewHelp:
		if key.Matches(msg, a.keymap.Back, a.keymap.Help, a.keymap.Quit) {
			a.currentView = messages.ViewSearch
		}
	}
	return cmd
}

// loadStatus fetches the index status and schedules the next refresh.
func (a *App) loadStatus() tea.Cmd {
	next := tea.Tick(statusRefresh, func(time.Time) tea.Msg { return statusTick{} })
	return tea.Batch(a.fetchStatus(), next)
}

func (a *App) fetchStatus() tea.Cmd {
	svc, ctx := a.ports.Search, a.ctx
	return func() tea.Msg {
		status, err := svc.Status(ctx)
		return messages.StatusLoaded{Status: status, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewDetail:
		return a.detailView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Search:
  (type)      Enter a query
  faculty:X   Only resources of faculty X
  year:N      Only resources of academic year N
  module:X    Only resources of module X
  enter       Submit search
  esc         Back to results, or quit when there are none

Results:
  j/k, ↑/↓    Navigate results
  enter       Open result
  n, /        Edit the query
  ?           Help
  q           Quit

Result:
  j/k, ↑/↓    Scroll
  g/G         Top or bottom
  r           Revectorize the resource
  esc         Back to results

` + a.styles.Help.Render("[esc] back")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Query returns the raw search input.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult {
	return a.searchView.Results()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
}

// Package messages defines the Bubble Tea messages exchanged between the TUI
// views and the app model.
package messages

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// ViewType identifies a screen. The zero value is the search view.
type ViewType int

const (
	ViewSearch ViewType = iota
	ViewDetail
	ViewHelp
)

var viewNames = [...]string{
	ViewSearch: "search",
	ViewDetail: "detail",
	ViewHelp:   "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// SearchCompleted carries the outcome of a query.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ResultSelected opens a result in the detail view.
type ResultSelected struct {
	Result domain.SearchResult
}

// StatusLoaded carries a refreshed index status.
type StatusLoaded struct {
	Status *domain.IndexStatus
	Err    error
}

// RevectorizeQueued reports how many catalogue entries were queued for a
// resource.
type RevectorizeQueued struct {
	ResourceID string
	Count      int
	Err        error
}

// ViewChanged switches the active screen.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred reports a failure to the active view.
type ErrorOccurred struct {
	Err error
}

// Quit ends the program.
type Quit struct{}

// Send returns a command that delivers msg.
func Send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// SwitchTo returns a command that changes the active screen.
func SwitchTo(view ViewType) tea.Cmd {
	return Send(ViewChanged{View: view})
}

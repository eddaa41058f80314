// Package status provides the status bar shown under the search view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/keymap"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/styles"
	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// State is what the search view is doing, as far as the bar is concerned.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
)

const separator = "  │  "

// Bar shows the search state and index health on the left and key hints on
// the right.
type Bar struct {
	styles *styles.Styles
	help   help.Model
	hints  []key.Binding
	width  int

	state       State
	message     string
	resultCount int
	index       *domain.IndexStatus
}

// NewBar creates a status bar showing the query hints of km.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = s.Muted
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{
		styles: s,
		help:   h,
		hints:  km.ShortHelp(),
		width:  80,
		state:  StateReady,
	}
}

// Init implements tea.Model.
func (s *Bar) Init() tea.Cmd { return nil }

// Update is a no-op; the bar is driven through its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) { return s, nil }

// View renders the bar on one line across the full width. Trailing hints
// are dropped first when space runs out.
func (s *Bar) View() string {
	parts := []string{s.stateText()}
	if idx := s.indexText(); idx != "" {
		parts = append(parts, idx)
	}
	left := strings.Join(parts, s.styles.Muted.Render(separator))

	style := s.styles.StatusBar
	inner := max(s.width-style.GetHorizontalFrameSize(), 0)
	right := s.fitHints(inner - lipgloss.Width(left) - 1)

	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return style.Width(s.width).MaxHeight(1).Render(left + strings.Repeat(" ", gap) + right)
}

// fitHints renders the longest prefix of the hints that fits in budget cells.
func (s *Bar) fitHints(budget int) string {
	fitted := ""
	for n := 1; n <= len(s.hints) && budget > 0; n++ {
		view := s.help.ShortHelpView(s.hints[:n])
		if lipgloss.Width(view) > budget {
			break
		}
		fitted = view
	}
	return fitted
}

func (s *Bar) stateText() string {
	//nolint:exhaustive // ready falls through to the message
	switch s.state {
	case StateSearching:
		return s.styles.Muted.Render("Searching...")
	case StateResults:
		return s.styles.Normal.Render(pluralise(s.resultCount, "result"))
	case StateError:
		text := "Error"
		if s.message != "" {
			text += ": " + s.message
		}
		return s.styles.Error.Render(text)
	}
	if s.message == "" {
		return s.styles.Muted.Render("Ready")
	}
	return s.styles.Normal.Render(s.message)
}

// indexText summarises the vector index, or returns "" before a status has
// been loaded.
func (s *Bar) indexText() string {
	switch {
	case s.index == nil:
		return ""
	case !s.index.Ready:
		return s.styles.Warning.Render("index not ready")
	}

	text := s.styles.Muted.Render(fmt.Sprintf("%d docs · %d items", s.index.DocumentCount, s.index.ItemCount))
	if s.index.PendingTasks > 0 {
		text += s.styles.Muted.Render(" · ") + s.styles.Warning.Render(fmt.Sprintf("%d pending", s.index.PendingTasks))
	}
	return text
}

func pluralise(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// SetState sets the displayed state.
func (s *Bar) SetState(state State) { s.state = state }

// State returns the displayed state.
func (s *Bar) State() State { return s.state }

// SetMessage sets the text shown in the ready and error states.
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the current message.
func (s *Bar) Message() string { return s.message }

// SetResultCount sets the number shown in the results state.
func (s *Bar) SetResultCount(count int) { s.resultCount = count }

// ResultCount returns the result count.
func (s *Bar) ResultCount() int { return s.resultCount }

// SetIndexStatus records the latest index status. nil hides the summary.
func (s *Bar) SetIndexStatus(status *domain.IndexStatus) { s.index = status }

// SetHints replaces the key hints.
func (s *Bar) SetHints(bindings []key.Binding) { s.hints = bindings }

// SetWidth sets the bar width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the bar width.
func (s *Bar) Width() int { return s.width }

// Clear resets the search state and keeps the index summary.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
}

// Package input provides the query field for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/styles"
)

const (
	charLimit  = 256
	minWidth   = 20
	labelWidth = 12

	// historySize is how many submitted queries are kept for recall.
	historySize = 50
)

const placeholder = "derivatives  faculty:science year:1 module:MATH101"

// QueryInput is a single-line query field with recall of earlier queries.
type QueryInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int

	// history holds submitted queries, oldest first. cursor indexes into it
	// while recalling; len(history) means the live draft.
	history []string
	cursor  int
	draft   string
}

// NewQueryInput creates a focused query field.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = placeholder
	field.CharLimit = charLimit
	field.Focus()

	q := &QueryInput{field: field, styles: s}
	q.SetWidth(62)
	return q
}

// Init starts the cursor blinking.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update routes a message to the field. Up and down walk the history.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && q.field.Focused() {
		//nolint:exhaustive // only history keys are intercepted
		switch key.Type {
		case tea.KeyUp:
			q.recall(-1)
			return q, nil
		case tea.KeyDown:
			q.recall(1)
			return q, nil
		}
	}

	var cmd tea.Cmd
	q.field, cmd = q.field.Update(msg)
	return q, cmd
}

// Remember appends a submitted query to the history. Blank queries and
// immediate repeats are skipped.
func (q *QueryInput) Remember(query string) {
	if query != "" && (len(q.history) == 0 || q.history[len(q.history)-1] != query) {
		q.history = append(q.history, query)
		if len(q.history) > historySize {
			q.history = q.history[len(q.history)-historySize:]
		}
	}
	q.cursor = len(q.history)
	q.draft = ""
}

// History returns the remembered queries, oldest first.
func (q *QueryInput) History() []string {
	return append([]string(nil), q.history...)
}

func (q *QueryInput) recall(step int) {
	if len(q.history) == 0 {
		return
	}
	if q.cursor == len(q.history) {
		q.draft = q.field.Value()
	}

	q.cursor = min(max(q.cursor+step, 0), len(q.history))
	if q.cursor == len(q.history) {
		q.field.SetValue(q.draft)
	} else {
		q.field.SetValue(q.history[q.cursor])
	}
	q.field.CursorEnd()
}

// View renders the labelled field.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Search: ")
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, q.styles.InputField.Render(q.field.View()))
}

// Value returns the text in the field.
func (q *QueryInput) Value() string { return q.field.Value() }

// SetValue replaces the text in the field.
func (q *QueryInput) SetValue(value string) {
	q.field.SetValue(value)
	q.field.CursorEnd()
}

// Focus gives the field keyboard focus.
func (q *QueryInput) Focus() tea.Cmd { return q.field.Focus() }

// Blur drops keyboard focus.
func (q *QueryInput) Blur() { q.field.Blur() }

// Focused reports whether the field takes keys.
func (q *QueryInput) Focused() bool { return q.field.Focused() }

// SetWidth sizes the field to the terminal, leaving room for the label.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	q.field.Width = max(width-labelWidth, minWidth)
}

// Width returns the width last set.
func (q *QueryInput) Width() int { return q.width }

// Package detail provides the result detail view for the TUI.
package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/components/list"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/keymap"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/messages"
	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/styles"
	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
)

// ErrNoResourceService is returned when revectorization is requested without
// a resource service.
var ErrNoResourceService = errors.New("resource service is required")

// View shows one search result: its catalogue record and matched excerpts.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	resources driving.ResourceService
	ctx       context.Context

	result       *domain.SearchResult
	scrollOffset int
	width        int
	height       int
	message      string
	err          error
}

// NewView creates a new detail view. resources may be nil, which disables
// revectorization.
func NewView(s *styles.Styles, km *keymap.KeyMap, resources driving.ResourceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		resources: resources,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetResult sets the result to display and resets scrolling.
func (v *View) SetResult(result domain.SearchResult) {
	v.result = &result
	v.scrollOffset = 0
	v.message = ""
	v.err = nil
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	case messages.RevectorizeQueued:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.message = fmt.Sprintf("Queued %d resource(s) for revectorization", msg.Count)
		}
	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case key.Matches(msg, v.keymap.Top):
		v.scrollOffset = 0
	case key.Matches(msg, v.keymap.Bottom):
		v.scrollOffset = v.maxScrollOffset()
	case key.Matches(msg, v.keymap.Revectorize):
		return v, v.revectorize()
	case key.Matches(msg, v.keymap.Back, v.keymap.Quit):
		return v, messages.SwitchTo(messages.ViewSearch)
	}
	return v, nil
}

// revectorize queues the shown resource through its locator.
func (v *View) revectorize() tea.Cmd {
	if v.result == nil {
		return nil
	}
	doc := v.result.Document
	svc, ctx := v.resources, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.RevectorizeQueued{ResourceID: doc.ID, Err: ErrNoResourceService}
		}
		n, err := svc.ContentChanged(ctx, doc.Locator)
		return messages.RevectorizeQueued{ResourceID: doc.ID, Count: n, Err: err}
	}
}

// visibleLines is the body height after title, separator and footer.
func (v *View) visibleLines() int {
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent lays out the record fields followed by the excerpts.
func (v *View) buildContent() []string {
	if v.result == nil {
		return nil
	}
	doc := v.result.Document

	lines := []string{
		v.formatField("ID", doc.ID),
		v.formatField("Title", doc.Title),
		v.formatField("Locator", doc.Locator),
	}
	if doc.ContentType != "" {
		lines = append(lines, v.formatField("Type", doc.ContentType))
	}
	if facets := list.Facets(doc); len(facets) > 0 {
		lines = append(lines, v.formatField("Tags", strings.Join(facets, " · ")))
	}
	lines = append(lines,
		v.formatField("Relevance", fmt.Sprintf("%.3f", v.result.RelevanceScore)),
		v.formatField("Chunks", fmt.Sprintf("%d matched", v.result.ChunkCount)))

	if doc.Description != "" {
		lines = append(lines, "", "Description:")
		lines = append(lines, wrap(doc.Description, v.width-4)...)
	}

	for i, chunk := range v.result.MatchedChunks {
		lines = append(lines, "", fmt.Sprintf("Excerpt %d:", i+1))
		lines = append(lines, wrap(chunk, v.width-4)...)
	}
	return lines
}

func (v *View) formatField(label, value string) string {
	return fmt.Sprintf("%-11s %s", label+":", value)
}

// View renders the detail view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Resource"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 1)))
	b.WriteString("\n\n")

	if v.result == nil {
		b.WriteString(v.styles.Muted.Render("No result selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	lines := v.buildContent()
	end := min(v.scrollOffset+v.visibleLines(), len(lines))
	for _, line := range lines[v.scrollOffset:end] {
		b.WriteString(v.renderLine(line))
		b.WriteString("\n")
	}

	if len(lines) > v.visibleLines() {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]", v.scrollOffset+1, end, len(lines))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.message != "":
		b.WriteString(v.styles.Success.Render(v.message))
		b.WriteString("\n")
	}
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderLine styles headings, fields and body text.
func (v *View) renderLine(line string) string {
	if strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " ") {
		return v.styles.Subtitle.Render(line)
	}
	if label, value, ok := strings.Cut(line, ": "); ok && len(label) < 11 && !strings.HasPrefix(line, " ") {
		return v.styles.Subtitle.Render(label+":") + v.styles.Normal.Render(" "+value)
	}
	return v.styles.Normal.Render(line)
}

func (v *View) renderHelp() string {
	hints := make([]string, 0, 4)
	for _, b := range v.keymap.DetailHelp() {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return v.styles.Help.Render(strings.Join(hints, "  "))
}

// wrap breaks text into indented lines of at most width runes.
func wrap(text string, width int) []string {
	width = max(width, 20)
	var (
		lines []string
		cur   []string
		n     int
	)
	for _, word := range strings.Fields(text) {
		w := len([]rune(word))
		if n > 0 && n+1+w > width {
			lines = append(lines, "  "+strings.Join(cur, " "))
			cur, n = nil, 0
		}
		if n > 0 {
			n++
		}
		cur = append(cur, word)
		n += w
	}
	if len(cur) > 0 {
		lines = append(lines, "  "+strings.Join(cur, " "))
	}
	return lines
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Result returns the displayed result, or nil.
func (v *View) Result() *domain.SearchResult {
	return v.result
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

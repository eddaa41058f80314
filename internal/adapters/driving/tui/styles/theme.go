// Package styles holds the colour palette and lipgloss styles shared by the
// TUI and the plain CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette. Each colour carries a light and a dark
// variant; lipgloss picks one from the terminal background.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
	Bar        lipgloss.AdaptiveColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// DefaultTheme returns the LearnBox palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    adaptive("#5B21B6", "#A78BFA"),
		Secondary:  adaptive("#0E7490", "#67E8F9"),
		Foreground: adaptive("#1F2937", "#E5E7EB"),
		Muted:      adaptive("#6B7280", "#9CA3AF"),
		Success:    adaptive("#15803D", "#86EFAC"),
		Warning:    adaptive("#B45309", "#FCD34D"),
		Error:      adaptive("#B91C1C", "#FCA5A5"),
		Border:     adaptive("#D1D5DB", "#4B5563"),
		Bar:        adaptive("#F3F4F6", "#111827"),
	}
}

// Relevance bands used to colour scores.
const (
	strongMatch = 0.75
	fairMatch   = 0.5
)

// Styles are the rendered forms of a theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Tag renders faculty, year and module facets.
	Tag lipgloss.Style
	// Score is the base style for relevance scores. See ScoreStyle.
	Score   lipgloss.Style
	Excerpt lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	boxed := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Border)

	return &Styles{
		theme: theme,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Bar).Background(theme.Primary).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),

		Tag:     fg(theme.Secondary),
		Score:   fg(theme.Success).Bold(true),
		Excerpt: fg(theme.Muted).Italic(true).PaddingLeft(4),

		InputField: boxed.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Help:       fg(theme.Muted),
		Border:     boxed,
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette behind these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ScoreStyle colours a relevance score by band: strong matches use the
// success colour, fair ones the warning colour, the rest are muted.
func (s *Styles) ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= strongMatch:
		return s.Score
	case score >= fairMatch:
		return s.Score.Foreground(s.theme.Warning)
	default:
		return s.Score.Foreground(s.theme.Muted).UnsetBold()
	}
}

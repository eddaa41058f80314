package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/styles"
)

// Styles for plain command output share the TUI palette. lipgloss drops
// colour when stdout is not a terminal.
var theme = styles.DefaultTheme()

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	subtitleStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary)
	mutedStyle    = lipgloss.NewStyle().Foreground(theme.Muted)
	successStyle  = lipgloss.NewStyle().Foreground(theme.Success)
	warningStyle  = lipgloss.NewStyle().Foreground(theme.Warning)
	excerptStyle  = lipgloss.NewStyle().Foreground(theme.Muted).PaddingLeft(6)
)

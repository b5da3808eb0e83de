package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorSuccess = lipgloss.Color("#10B981") // Green (installed)
	colorDanger  = lipgloss.Color("#EF4444") // Red (errors)
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Amber
)

// Shared styles for command output.
var (
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	dangerStyle  = lipgloss.NewStyle().Foreground(colorDanger)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

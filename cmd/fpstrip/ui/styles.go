// Package ui renders the fpstrip terminal output.
package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors
var (
	Success = lipgloss.Color("#8BC34A") // Lime Green
	Warning = lipgloss.Color("#FFC107") // Yellow
	Danger  = lipgloss.Color("#e53935") // Red
	Muted   = lipgloss.Color("#808080") // Gray
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)

	successStyle = lipgloss.NewStyle().Foreground(Success)
	warningStyle = lipgloss.NewStyle().Foreground(Warning)
	dangerStyle  = lipgloss.NewStyle().Foreground(Danger)
	mutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	rowStyle = lipgloss.NewStyle().PaddingLeft(2)
)

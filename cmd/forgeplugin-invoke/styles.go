package main

import "github.com/charmbracelet/lipgloss"

var (
	colorTitle  = lipgloss.Color("#FFFFFF")
	colorSubtle = lipgloss.Color("#666666")
	colorInfo   = lipgloss.Color("#88C0D0")
	colorError  = lipgloss.Color("#FF6B6B")
	colorWarn   = lipgloss.Color("#FFD700")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	subtleStyle = lipgloss.NewStyle().Foreground(colorSubtle)
	infoStyle   = lipgloss.NewStyle().Foreground(colorInfo)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	helpStyle   = lipgloss.NewStyle().Foreground(colorSubtle)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorSubtle)
)

// diagnosticStyle returns a style for a diagnostic line keyed by severity.
func diagnosticStyle(severity string) lipgloss.Style {
	switch severity {
	case "error":
		return lipgloss.NewStyle().Bold(true).Foreground(colorError)
	case "warning":
		return lipgloss.NewStyle().Foreground(colorWarn)
	default:
		return lipgloss.NewStyle().Foreground(colorSubtle)
	}
}

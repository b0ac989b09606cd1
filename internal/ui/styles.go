package ui

import "github.com/charmbracelet/lipgloss"

// styles holds the few styles the status screen uses.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Good    lipgloss.Style
	Warn    lipgloss.Style
	Bad     lipgloss.Style
	Muted   lipgloss.Style
	Price   lipgloss.Style
	Header  lipgloss.Style
	KeyHint lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bd93f9")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4")),
		Good:    lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f1fa8c")),
		Bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")),
		Muted:   lipgloss.NewStyle().Faint(true),
		Price:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd")),
		Header:  lipgloss.NewStyle().Bold(true).Underline(true),
		KeyHint: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff79c6")),
	}
}

package main

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#A488F7"}
	faintColor  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	targetColor = lipgloss.AdaptiveColor{Light: "#C44536", Dark: "#E06C75"}
)

type styles struct {
	app, topBar, topTitle, topStatus lipgloss.Style
	field                            lipgloss.Style
	glyph, target                    lipgloss.Style
	statusBar, statusHint            lipgloss.Style
	helpOverlay                      lipgloss.Style
	toast                            lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()

	return styles{
		app:         base,
		topBar:      base.Padding(0, 1),
		topTitle:    base.Copy().Bold(true).Foreground(accentColor),
		topStatus:   base.Copy().Faint(true),
		field:       base,
		glyph:       base.Copy().Bold(true).Foreground(accentColor),
		target:      base.Copy().Foreground(targetColor),
		statusBar:   base.Padding(0, 1),
		statusHint:  base.Copy().Foreground(faintColor),
		helpOverlay: base.Border(lipgloss.RoundedBorder()).Padding(1, 2),
		toast:       base.Copy().Bold(true).Foreground(accentColor).Padding(0, 1),
	}
}

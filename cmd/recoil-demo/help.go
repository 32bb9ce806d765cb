package main

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

//go:embed help.md
var helpMarkdown string

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

var (
	markdownMu       sync.Mutex
	markdownRenderer *glamour.TermRenderer
	markdownErr      error
	markdownStyle    = markdownThemeAuto
	markdownWordWrap = 72
)

// renderHelp returns the Glamour-rendered help overlay body, falling back to
// the raw Markdown if the renderer cannot be built.
func renderHelp() string {
	renderer := ensureMarkdownRenderer()
	if renderer == nil {
		return helpMarkdown
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}

func ensureMarkdownRenderer() *glamour.TermRenderer {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if markdownRenderer != nil && markdownErr == nil {
		return markdownRenderer
	}
	options := []glamour.TermRendererOption{
		glamour.WithAutoStyle(),
	}
	if markdownWordWrap > 0 {
		options = append(options, glamour.WithWordWrap(markdownWordWrap))
	} else {
		options = append(options, glamour.WithWordWrap(0))
	}
	switch markdownStyle {
	case markdownThemeLight:
		options = append(options, glamour.WithStandardStyle("light"))
	case markdownThemeDark:
		options = append(options, glamour.WithStandardStyle("dark"))
	}
	markdownRenderer, markdownErr = glamour.NewTermRenderer(options...)
	if markdownErr != nil {
		return nil
	}
	return markdownRenderer
}

func setMarkdownWordWrap(width int) {
	markdownMu.Lock()
	if width < 0 {
		width = 0
	}
	if markdownWordWrap != width {
		markdownWordWrap = width
		markdownRenderer = nil
		markdownErr = nil
	}
	markdownMu.Unlock()
}

func setMarkdownTheme(theme markdownTheme) {
	markdownMu.Lock()
	if theme == "" {
		theme = markdownThemeAuto
	}
	if markdownStyle != theme {
		markdownStyle = theme
		markdownRenderer = nil
		markdownErr = nil
	}
	markdownMu.Unlock()
}

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

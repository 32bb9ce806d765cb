package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	theme := flag.String("theme", "auto", "Help rendering theme: auto, light, or dark")
	fps := flag.Int("fps", 60, "Animation frame rate")
	flag.Parse()
	setMarkdownTheme(markdownThemeFromString(*theme))

	if _, err := tea.NewProgram(
		initialModel(*fps),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

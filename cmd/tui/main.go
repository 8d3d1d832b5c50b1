package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/pgsuggest/server/internal/tui"
)

func main() {
	endpoint := flag.String("endpoint", "", "completion server URL (default PGSUGGEST_API_ENDPOINT or http://localhost:8000)")
	flag.Parse()

	env := os.Getenv("ENVIRONMENT")

	if env == "" {
		env = "development"
	}

	app := tui.NewApp(env, *endpoint)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running pgsuggest: %v\n", err)
		os.Exit(1)
	}
}

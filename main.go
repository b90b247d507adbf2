package main

import (
	"flag"
	"fmt"
	"os"

	"telecloud/initialize"
	"telecloud/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		owner      = flag.String("owner", "local", "Owner identity for this console session")
	)
	flag.Parse()

	app, err := initialize.Build(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup failed:", err)
		os.Exit(1)
	}

	p := tea.NewProgram(ui.New(app.Dispatcher, *owner), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

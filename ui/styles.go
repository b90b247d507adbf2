package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	replyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	buttonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

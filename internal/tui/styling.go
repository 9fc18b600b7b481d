package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.ANSIColor(termenv.ANSIBrightWhite)).
			Bold(true)

	QuestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.ANSIColor(termenv.ANSIBrightGreen)).
			Bold(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3a96dd")).Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.ANSIColor(termenv.ANSIYellow))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.ANSIColor(termenv.ANSIBrightWhite)).
				Bold(true).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().Padding(0, 1)
)

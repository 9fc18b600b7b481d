// Package tui provides shared terminal UI helpers.
package tui

import "github.com/charmbracelet/lipgloss"

func SuccessIcon(colorize bool) string {
	return icon("✅", QuestionStyle, colorize)
}

func ErrorIcon(colorize bool) string {
	return icon("❌", ErrorStyle, colorize)
}

func InfoIcon(colorize bool) string {
	return icon("🛈", WarningStyle, colorize)
}

func icon(symbol string, style lipgloss.Style, colorize bool) string {
	if colorize {
		return style.Render(symbol)
	}
	return symbol
}

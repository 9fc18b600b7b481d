package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Table renders rows under headers with the shared table styles.
func Table(headers []string, rows [][]string, colorize bool) string {
	rendered := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if !colorize {
				return lipgloss.NewStyle().Padding(0, 1)
			}
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
	return rendered.String()
}

var countPrinter = message.NewPrinter(language.English)

// FormatCount groups digits in threes: 1234567 becomes 1,234,567.
func FormatCount(value uint32) string {
	return countPrinter.Sprintf("%d", value)
}

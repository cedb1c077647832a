// Package theme holds the lipgloss styles used for command output.
package theme

import (
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Palette follows the document's sky-blue header band.
var (
	Primary = lipgloss.Color("#0EA5E9") // Sky
	Band    = lipgloss.Color("#87CEFA") // Light sky, table headers
	Success = lipgloss.Color("#22C55E") // Green
	Error   = lipgloss.Color("#F43F5E") // Rose
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Band)

	Label = lipgloss.NewStyle().
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Ok = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Rule returns a horizontal line n cells wide.
func Rule(n int) string {
	return lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", n))
}

// Mark renders a check or cross for a boolean outcome.
func Mark(ok bool) string {
	if ok {
		return Ok.Render("✓")
	}
	return Failed.Render("✗")
}

// Table lays rows out under a header band. Columns whose index is listed in
// numeric are right-aligned.
func Table(headers []string, rows [][]string, numeric ...int) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cell
			if row == table.HeaderRow {
				s = s.Inherit(Header)
			}
			if slices.Contains(numeric, col) {
				s = s.Align(lipgloss.Right)
			}
			return s
		}).
		String()
}

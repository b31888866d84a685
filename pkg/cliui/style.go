// Package cliui holds the terminal output helpers shared by aura commands:
// styles, a progress step, tables and markdown.
package cliui

import "github.com/charmbracelet/lipgloss"

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var (
	SuccessMark = fg("82").Render("✓")
	FailMark    = fg("196").Render("✗")
	LockedMark  = fg("214").Render("🔒")

	KeyStyle   = fg("39")
	ValueStyle = fg("252")
	DimStyle   = fg("241")

	headerStyle  = fg("252").Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = fg("238")
	elapsedStyle = fg("245")
	spinnerStyle = fg("82")
)

// Mark returns SuccessMark for a nil error and FailMark otherwise.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

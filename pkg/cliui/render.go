package cliui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const wrapWidth = 80

// Table renders rows under a bold header row inside a rounded border.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

// RenderMarkdown renders md for the terminal. On failure it returns md
// unchanged together with the error so callers can still print something.
func RenderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrapWidth))
	if err != nil {
		return md, err
	}
	out, err := r.Render(md)
	if err != nil {
		return md, err
	}
	return out, nil
}

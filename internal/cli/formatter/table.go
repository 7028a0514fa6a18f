package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableHeaderStyle = StyleHeader.PaddingRight(2)
	tableCellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// RenderTable lays rows out in aligned columns under a ruled header. Cells
// may already carry ANSI styling; widths are measured on visible text.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(padRows(rows, len(headers))...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	return strings.TrimRight(t.String(), " \n") + "\n"
}

// padRows makes every row exactly cols wide.
func padRows(rows [][]string, cols int) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, cols)
		copy(row, r)
		out[i] = row
	}
	return out
}

package chart

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const missingCell = "-"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Table renders the chart as a text table: one row per data point and one
// column per series. Interpolated values are prefixed with "~" when scatter
// markers are on.
func (c *Chart) Table() string {
	headers := []string{"x", "kind"}
	for _, s := range c.series {
		headers = append(headers, s.Name)
	}

	cells := c.Resolve()
	rows := make([][]string, 0, len(c.data))
	for i, p := range c.data {
		row := []string{c.XValue(p), p.Label}
		for _, cell := range cells[i] {
			row = append(row, c.formatCell(cell))
		}
		rows = append(rows, row)
	}

	colors := c.Colors()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}
			if series := col - 2; series >= 0 && series < len(colors) && colors[series] != "" {
				style = style.Foreground(lipgloss.Color(colors[series]))
			}
			return style
		})

	return t.String()
}

func (c *Chart) formatCell(cell Cell) string {
	if !cell.Present {
		return missingCell
	}
	s := strconv.FormatFloat(cell.Value, 'f', 2, 64)
	if cell.Interpolated && c.ShowScatter {
		return "~" + s
	}
	return s
}

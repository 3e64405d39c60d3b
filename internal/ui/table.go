package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column is a table column with a fixed display width.
type Column struct {
	Title string
	Width int
}

// Row is one line of cell values.
type Row []string

// Table renders fixed-width rows.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates an empty table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the table with a header and divider. Cells are padded by
// hand so styled text keeps exact column widths.
func (t *Table) Render() string {
	var sb strings.Builder
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cell := lipgloss.NewStyle().Foreground(ColorValue)

	var parts []string
	for _, col := range t.Columns {
		parts = append(parts, header.Render(fit(col.Title, col.Width)))
	}
	sb.WriteString(strings.Join(parts, " ") + "\n")

	parts = parts[:0]
	for _, col := range t.Columns {
		parts = append(parts, StyleMeta.Render(strings.Repeat("-", col.Width)))
	}
	sb.WriteString(strings.Join(parts, " ") + "\n")

	for _, row := range t.Rows {
		parts = parts[:0]
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			parts = append(parts, cell.Render(fit(val, col.Width)))
		}
		sb.WriteString(strings.Join(parts, " ") + "\n")
	}
	return sb.String()
}

// fit left-aligns s within width runes, truncating with an ellipsis.
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}

// KeyValueBlock renders key/value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-16s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}

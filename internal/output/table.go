// =============================================================================
// internal/output/table.go - Table formatting utilities
// =============================================================================
package output

import (
	"fmt"
	"io"
	"strings"
)

// Table renders rows of cells with aligned columns
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table with the given column headers
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow appends one row, padding or dropping cells to the column count
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if len(row[i]) > t.widths[i] {
			t.widths[i] = len(row[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table to the writer
func (t *Table) Render(writer io.Writer) error {
	if len(t.headers) == 0 {
		return nil
	}

	if err := t.writeRow(writer, t.headers); err != nil {
		return err
	}

	separators := make([]string, len(t.headers))
	for i, width := range t.widths {
		separators[i] = strings.Repeat("-", width)
	}
	if err := t.writeRow(writer, separators); err != nil {
		return err
	}

	for _, row := range t.rows {
		if err := t.writeRow(writer, row); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) writeRow(writer io.Writer, cells []string) error {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", t.widths[i], cell)
	}
	_, err := fmt.Fprintf(writer, "%s\n", strings.TrimRight(strings.Join(parts, "  "), " "))
	return err
}

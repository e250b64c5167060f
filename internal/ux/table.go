package ux

import (
	"strings"
	"text/tabwriter"
)

// Table is a simple aligned text table.
type Table struct {
	Headers []string
	Rows    [][]string
	// Empty is printed instead of the table when there are no rows.
	Empty string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// Add appends a row.
func (t *Table) Add(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// String renders the table without color.
func (t *Table) String() string {
	return strings.TrimRight(t.Render(false), "\n")
}

// Render renders the table, styling the header row when color is true.
func (t *Table) Render(color bool) string {
	if len(t.Rows) == 0 && t.Empty != "" {
		return t.Empty + "\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	if len(t.Headers) > 0 {
		w.Write([]byte(strings.Join(t.Headers, "\t") + "\n"))
	}
	for _, row := range t.Rows {
		w.Write([]byte(strings.Join(row, "\t") + "\n"))
	}
	w.Flush()

	out := b.String()
	if !color || len(t.Headers) == 0 {
		return out
	}
	// Style the aligned header line as a whole so escape codes do not
	// count towards column widths.
	header, rest, _ := strings.Cut(out, "\n")
	return Styles.Header.Render(header) + "\n" + rest
}

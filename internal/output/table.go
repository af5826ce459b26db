package output

import (
	"io"

	"github.com/salmonumbrella/simpleweather/internal/table"
)

// Table is a pre-built grid with caption row.
type Table struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// Grid returns the header row followed by the data rows.
func (t Table) Grid() [][]string {
	grid := make([][]string, 0, len(t.Rows)+1)
	if len(t.Headers) > 0 {
		grid = append(grid, t.Headers)
	}
	return append(grid, t.Rows...)
}

// Records returns one map per row keyed by header, for structured output.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// render draws t as a bordered table. An empty table prints nothing.
func (t Table) render(w io.Writer) error {
	grid := t.Grid()
	if len(grid) == 0 {
		return nil
	}
	return table.Render(w, grid)
}

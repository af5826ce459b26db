package table

import (
	"io"
	"strings"
)

const (
	corner      = "+"
	horizontal  = "-"
	separator   = "|"
	defaultPads = 1
)

// Config controls the table layout.
type Config struct {
	// Padding is the minimum number of spaces on each side of a cell.
	Padding int
}

// DefaultConfig returns the layout used by Render: one space of padding.
func DefaultConfig() Config {
	return Config{Padding: defaultPads}
}

// Renderer lays out tables with a fixed Config. The zero value renders
// without padding; use New or DefaultConfig for the usual layout.
type Renderer struct {
	cfg Config
}

// New returns a Renderer for cfg. A negative padding is treated as zero.
func New(cfg Config) *Renderer {
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	return &Renderer{cfg: cfg}
}

// Render plans column widths for rows and writes the table to w using the
// default layout.
func Render(w io.Writer, rows [][]string) error {
	return New(DefaultConfig()).Render(w, rows)
}

// Render plans column widths for rows and writes the table to w.
func (r *Renderer) Render(w io.Writer, rows [][]string) error {
	widths, err := PlanWidths(rows, r.cfg.Padding)
	if err != nil {
		return err
	}
	return r.RenderWidths(w, rows, widths)
}

// RenderWidths writes rows to w using precomputed column widths.
//
// Every precondition is checked before anything is written, so a
// *ContractViolation never leaves a partial table on w.
func (r *Renderer) RenderWidths(w io.Writer, rows [][]string, widths []int) error {
	lines, err := r.Lines(rows, widths)
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err = io.WriteString(w, b.String())
	return err
}

// Lines returns the rendered table without trailing newlines: a delimiter
// line before every row, the row's content line, and a closing delimiter.
func (r *Renderer) Lines(rows [][]string, widths []int) ([]string, error) {
	if err := r.check(rows, widths); err != nil {
		return nil, err
	}

	delimiter := delimiterLine(widths)
	lines := make([]string, 0, 2*len(rows)+1)
	for _, row := range rows {
		lines = append(lines, delimiter, r.contentLine(row, widths))
	}
	return append(lines, delimiter), nil
}

func (r *Renderer) check(rows [][]string, widths []int) error {
	if err := checkRows(rows); err != nil {
		return err
	}
	if len(widths) != len(rows[0]) {
		return violation(-1, -1, "got %d column widths for %d columns", len(widths), len(rows[0]))
	}
	for row, cells := range rows {
		for c, cell := range cells {
			if free := widths[c] - 2*r.cfg.Padding - Width(cell); free < 0 {
				return violation(row, c, "cell %q needs width %d, column has %d",
					cell, Width(cell)+2*r.cfg.Padding, widths[c])
			}
		}
	}
	return nil
}

// delimiterLine renders "+---+----+". With no columns it degenerates to "++".
func delimiterLine(widths []int) string {
	var b strings.Builder
	b.WriteString(corner)
	if len(widths) == 0 {
		b.WriteString(corner)
		return b.String()
	}
	for _, width := range widths {
		b.WriteString(strings.Repeat(horizontal, width))
		b.WriteString(corner)
	}
	return b.String()
}

// contentLine renders "| a | b |" with every cell centered. When the free
// space is odd, the extra space goes to the right. With no columns it
// degenerates to "||".
func (r *Renderer) contentLine(row []string, widths []int) string {
	var b strings.Builder
	b.WriteString(separator)
	if len(widths) == 0 {
		b.WriteString(separator)
		return b.String()
	}
	for c, cell := range row {
		free := widths[c] - 2*r.cfg.Padding - Width(cell)
		left := free / 2
		right := free - left

		b.WriteString(strings.Repeat(" ", r.cfg.Padding+left))
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", r.cfg.Padding+right))
		b.WriteString(separator)
	}
	return b.String()
}

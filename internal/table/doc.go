// Package table renders bordered, center-aligned text tables.
//
// A table is a slice of rows, each row a slice of cells. Row 0 is usually
// the header but the renderer treats all rows alike. Rendering happens in
// two steps:
//
//  1. PlanWidths measures every cell with Width and reserves, per column,
//     the widest cell plus the configured padding on both sides.
//  2. A Renderer writes a delimiter line before every row and after the
//     last one, and a content line per row with each cell centered in its
//     column.
//
// Width counts extended grapheme clusters, so combining sequences and
// emoji sequences count as one unit. East Asian wide characters are not
// weighted as two terminal columns.
//
// Example:
//
//	err := table.Render(os.Stdout, [][]string{
//	    {"City", "Temperature"},
//	    {"Oslo", "5 °C"},
//	})
//
// prints
//
//	+------+-------------+
//	| City | Temperature |
//	+------+-------------+
//	| Oslo |    5 °C     |
//	+------+-------------+
package table

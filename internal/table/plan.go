package table

// PlanWidths returns one width per column: the widest cell of the column,
// measured with Width, plus pad on each side.
//
// rows must hold at least one row and every row must have as many cells as
// rows[0]; otherwise a *ContractViolation is returned. A negative pad is
// treated as zero.
func PlanWidths(rows [][]string, pad int) ([]int, error) {
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	if pad < 0 {
		pad = 0
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], Width(cell))
		}
	}
	for c := range widths {
		widths[c] += 2 * pad
	}
	return widths, nil
}

// checkRows verifies the table is non-empty and rectangular.
func checkRows(rows [][]string) error {
	if len(rows) == 0 {
		return violation(-1, -1, "table has no rows")
	}
	columns := len(rows[0])
	for r, row := range rows {
		if len(row) != columns {
			return violation(r, -1, "row has %d cells, want %d", len(row), columns)
		}
	}
	return nil
}

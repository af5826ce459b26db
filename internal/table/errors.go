package table

import (
	"errors"
	"fmt"
)

// ContractViolation reports rows or widths that break the renderer's
// preconditions: ragged rows, a width slice that does not match the column
// count, or a cell that does not fit its planned column.
type ContractViolation struct {
	Reason string
	// Row and Column locate the offending cell. They are -1 when the
	// violation is not tied to a single row or column.
	Row    int
	Column int
}

func (e *ContractViolation) Error() string {
	switch {
	case e.Row >= 0 && e.Column >= 0:
		return fmt.Sprintf("table contract violation at row %d, column %d: %s", e.Row, e.Column, e.Reason)
	case e.Row >= 0:
		return fmt.Sprintf("table contract violation at row %d: %s", e.Row, e.Reason)
	default:
		return "table contract violation: " + e.Reason
	}
}

// IsContractViolation reports whether err is or wraps a *ContractViolation.
func IsContractViolation(err error) bool {
	var e *ContractViolation
	return errors.As(err, &e)
}

func violation(row, column int, format string, args ...any) *ContractViolation {
	return &ContractViolation{
		Reason: fmt.Sprintf(format, args...),
		Row:    row,
		Column: column,
	}
}

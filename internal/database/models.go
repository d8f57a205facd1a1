package database

import (
	"fmt"
	"time"
)

// ResultSet holds the rows and headers of one execution.
type ResultSet struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// RowCount returns the number of fetched rows.
func (r *ResultSet) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Empty reports whether no rows were returned.
func (r *ResultSet) Empty() bool {
	return r.RowCount() == 0
}

// Check verifies that every row is as wide as the header.
func (r *ResultSet) Check() error {
	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(r.Columns))
		}
	}
	return nil
}

// Statement is one SQL statement with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

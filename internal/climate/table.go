// Package climate holds the climate-derived input table that technologies
// fit their time-dependent coefficients from.
package climate

import (
	"fmt"
	"sort"
)

// Table is a set of named numeric columns of equal length. Rows are
// timesteps, addressed 1-based.
type Table struct {
	names []string
	cols  map[string][]float64
	rows  int
}

// NewTable copies cols into a table. All columns must have the same length.
func NewTable(cols map[string][]float64) (*Table, error) {
	t := &Table{cols: make(map[string][]float64, len(cols)), rows: -1}
	for name, vals := range cols {
		if t.rows >= 0 && len(vals) != t.rows {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", name, len(vals), t.rows)
		}
		t.rows = len(vals)
		t.cols[name] = append([]float64(nil), vals...)
		t.names = append(t.names, name)
	}
	if t.rows < 0 {
		t.rows = 0
	}
	sort.Strings(t.names)
	return t, nil
}

// Len is the number of rows.
func (t *Table) Len() int { return t.rows }

func (t *Table) Names() []string { return append([]string(nil), t.names...) }

func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	c, ok := t.cols[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), c...), true
}

// At returns the value of column name at 1-based row.
func (t *Table) At(name string, row int) (float64, bool) {
	c, ok := t.cols[name]
	if !ok || row < 1 || row > len(c) {
		return 0, false
	}
	return c[row-1], true
}

package model

import (
	"fmt"
	"maps"
	"slices"
)

// Column naming.
const (
	NameColumn = "name"
	// TotalTag prefixes the personal total columns (all_<year>).
	TotalTag = "all"
)

// ColumnName returns the column for a tag and year, e.g. guild_2023.
func ColumnName(tag string, year int) string {
	return fmt.Sprintf("%s_%d", tag, year)
}

// Row is one performer's counts keyed by column name. Rows are values:
// With returns a modified copy and never touches the receiver.
type Row struct {
	Name   string
	counts map[string]int
}

// NewRow returns an empty row for a performer.
func NewRow(name string) Row {
	return Row{Name: name, counts: map[string]int{}}
}

// With returns a copy of r with column set to v.
func (r Row) With(column string, v int) Row {
	next := Row{Name: r.Name, counts: make(map[string]int, len(r.counts)+1)}
	maps.Copy(next.counts, r.counts)
	next.counts[column] = v
	return next
}

// Lookup returns the count stored under column and whether it is present.
func (r Row) Lookup(column string) (int, bool) {
	v, ok := r.counts[column]
	return v, ok
}

// Count returns the count stored under column, or 0 when absent.
func (r Row) Count(column string) int {
	return r.counts[column]
}

// Columns returns the row's populated columns, sorted.
func (r Row) Columns() []string {
	return slices.Sorted(maps.Keys(r.counts))
}

// Table is an ordered set of rows sharing one column layout.
type Table struct {
	// Columns lists the count columns in output order; the name column is implicit.
	Columns []string
	Rows    []Row
}

// Header returns the full header including the leading name column.
func (t *Table) Header() []string {
	return append([]string{NameColumn}, t.Columns...)
}

// Cells returns the row's values in header order.
func (t *Table) Cells(r Row) []any {
	cells := make([]any, 0, len(t.Columns)+1)
	cells = append(cells, r.Name)
	for _, c := range t.Columns {
		cells = append(cells, r.Count(c))
	}
	return cells
}

// Validate checks that every row populates every column.
func (t *Table) Validate() error {
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			if _, ok := r.Lookup(c); !ok {
				return fmt.Errorf("%w: row %q lacks %s", ErrUnknownColumn, r.Name, c)
			}
		}
	}
	return nil
}

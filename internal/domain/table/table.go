// Package table flattens a union index into one report row per performer.
package table

import (
	"github.com/okian/ringstats/internal/domain/index"
	"github.com/okian/ringstats/internal/domain/model"
)

// Option applies a configuration option to Assemble.
type Option func(*settings)

type settings struct {
	rowLimit int
}

// WithRowLimit materialises only the first n performers in first-seen order.
// Non-positive n means no limit.
func WithRowLimit(n int) Option {
	return func(s *settings) {
		s.rowLimit = n
	}
}

// Columns returns the per-year count columns in output order:
// guild_<y>, county_<y>, union_<y> for each year ascending.
func Columns(years model.YearRange) []string {
	ys := years.Years()
	cols := make([]string, 0, len(model.ReportTags)*len(ys))
	for _, y := range ys {
		for _, tag := range model.ReportTags {
			cols = append(cols, model.ColumnName(tag.String(), y))
		}
	}
	return cols
}

// Assemble builds one row per performer with every column populated;
// combinations missing from ix are written as 0.
func Assemble(ix *index.YearIndex, years model.YearRange, opts ...Option) *model.Table {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	performers := ix.Performers()
	if s.rowLimit > 0 && len(performers) > s.rowLimit {
		performers = performers[:s.rowLimit]
	}

	t := &model.Table{
		Columns: Columns(years),
		Rows:    make([]model.Row, 0, len(performers)),
	}
	for _, name := range performers {
		row := model.NewRow(name)
		for _, y := range years.Years() {
			for _, tag := range model.ReportTags {
				row = row.With(model.ColumnName(tag.String(), y), ix.Count(name, y, tag))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

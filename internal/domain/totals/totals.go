// Package totals looks up each performer's independent yearly totals.
package totals

import (
	"context"

	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
	"github.com/okian/ringstats/pkg/metrics"
)

// Default fetcher configuration constants.
const (
	defaultPageSize = 1000
)

// Outcome classifies a personal total lookup.
type Outcome int

const (
	// Counted means the source returned at least one event.
	Counted Outcome = iota
	// NoResults means the source answered with an empty collection.
	NoResults
	// FetchError means the request or its decoding failed.
	FetchError
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Counted:
		return "counted"
	case NoResults:
		return "no_results"
	case FetchError:
		return "fetch_error"
	default:
		return "unknown"
	}
}

// Total is the result of one personal total lookup. Count is 0 for both
// NoResults and FetchError; Outcome keeps them apart.
type Total struct {
	Performer string
	Year      int
	Count     int
	Outcome   Outcome
	Err       error
	Truncated bool
}

// Tally aggregates lookup outcomes.
type Tally struct {
	Counted     int
	NoResults   int
	FetchErrors int
	Truncations int
}

// Add folds t into the tally.
func (t *Tally) Add(total Total) {
	switch total.Outcome {
	case Counted:
		t.Counted++
	case NoResults:
		t.NoResults++
	case FetchError:
		t.FetchErrors++
	}
	if total.Truncated {
		t.Truncations++
	}
}

// Merge folds another tally into t.
func (t *Tally) Merge(o Tally) {
	t.Counted += o.Counted
	t.NoResults += o.NoResults
	t.FetchErrors += o.FetchErrors
	t.Truncations += o.Truncations
}

// Columns returns the all_<year> columns for the range.
func Columns(years model.YearRange) []string {
	ys := years.Years()
	cols := make([]string, 0, len(ys))
	for _, y := range ys {
		cols = append(cols, model.ColumnName(model.TotalTag, y))
	}
	return cols
}

// Fetcher queries the record source by exact performer name.
type Fetcher struct {
	source   model.RecordSource
	pageSize int
	logger   logger.Logger
}

// NewFetcher creates a Fetcher reading from source.
func NewFetcher(source model.RecordSource, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:   source,
		pageSize: defaultPageSize,
		logger:   logger.Get().Named("totals"),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch returns the performer's total for one year.
func (f *Fetcher) Fetch(ctx context.Context, name string, year int) Total {
	q := model.Query{Kind: model.PersonalQuery, Performer: name, Year: year}
	total := Total{Performer: name, Year: year}

	f.logger.Debug(ctx, "fetching personal total", logger.String("performer", name), logger.Int("year", year))
	events, err := f.source.Fetch(ctx, q)
	switch {
	case err != nil:
		total.Outcome = FetchError
		total.Err = err
		f.logger.Error(ctx, "personal total lookup failed; recording 0",
			logger.String("performer", name),
			logger.Int("year", year),
			logger.Error(err),
		)
	case len(events) == 0:
		total.Outcome = NoResults
	default:
		total.Outcome = Counted
		total.Count = len(events)
	}

	if model.Truncated(total.Count, f.pageSize) {
		total.Truncated = true
		metrics.RecordTruncationWarning(q.Label())
		f.logger.Warn(ctx, "number of returned records is equal to max page size; records may be missing",
			logger.String("query", q.String()),
			logger.Int("page_size", f.pageSize),
		)
	}

	metrics.RecordPersonalTotal(total.Outcome.String())
	f.logger.Info(ctx, "personal total",
		logger.String("performer", name),
		logger.Int("year", year),
		logger.Int("records", total.Count),
		logger.String("outcome", total.Outcome.String()),
	)
	return total
}

// Enrich returns a copy of row with all_<year> set for every year in range.
// row itself is never modified, so rows can be enriched independently.
func (f *Fetcher) Enrich(ctx context.Context, row model.Row, years model.YearRange) (model.Row, Tally) {
	var tally Tally
	out := row
	for _, y := range years.Years() {
		total := f.Fetch(ctx, row.Name, y)
		tally.Add(total)
		out = out.With(model.ColumnName(model.TotalTag, y), total.Count)
	}
	return out, tally
}

// Package service runs one report: it indexes the affiliation queries,
// aggregates the union, assembles the table, enriches it with personal
// totals and hands it to the sink.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/ringstats/internal/adapters/report"
	"github.com/okian/ringstats/internal/domain/index"
	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/internal/domain/table"
	"github.com/okian/ringstats/internal/domain/totals"
	"github.com/okian/ringstats/pkg/logger"
	"github.com/okian/ringstats/pkg/metrics"
)

// Default runner configuration constants.
const (
	defaultPageSize    = 1000
	defaultConcurrency = 1
)

// Summary describes a completed run.
type Summary struct {
	RunID      string
	Years      model.YearRange
	Index      index.Stats
	Performers int
	Rows       int
	Totals     totals.Tally
	Duration   time.Duration
}

// Runner wires the pipeline stages together.
type Runner struct {
	source model.RecordSource
	sink   report.Sink

	// Configuration
	years       model.YearRange
	pageSize    int
	rowLimit    int
	concurrency int

	logger logger.Logger
}

// New constructs a Runner reading from source and writing to sink.
func New(source model.RecordSource, sink report.Sink, opts ...Option) *Runner {
	now := time.Now().Year()
	r := &Runner{
		source:      source,
		sink:        sink,
		years:       model.YearRange{From: now, To: now},
		pageSize:    defaultPageSize,
		concurrency: defaultConcurrency,
		logger:      logger.Get(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the pipeline once. Fetch failures degrade to zero counts and
// are reported in the summary; cancellation and sink failures abort the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString(), Years: r.years}
	log := r.logger.With(logger.String("run_id", sum.RunID))

	if err := r.years.Validate(); err != nil {
		return sum, err
	}

	log.Info(ctx, "starting run",
		logger.String("years", r.years.String()),
		logger.Int("page_size", r.pageSize),
		logger.Int("row_limit", r.rowLimit),
		logger.Int("concurrency", r.concurrency),
	)

	builder := index.NewBuilder(r.source,
		index.WithPageSize(r.pageSize),
		index.WithLogger(log.Named("index")),
	)
	ix, stats, err := builder.Build(ctx, r.years)
	sum.Index = stats
	if err != nil {
		return sum, fmt.Errorf("build index: %w", err)
	}
	sum.Performers = ix.Len()

	union := index.Union(ix)
	t := table.Assemble(union, r.years, table.WithRowLimit(r.rowLimit))
	log.Info(ctx, "assembled ringer table",
		logger.Int("performers", sum.Performers),
		logger.Int("rows", len(t.Rows)),
	)

	tally, err := r.enrich(ctx, log, t)
	sum.Totals = tally
	if err != nil {
		return sum, fmt.Errorf("enrich rows: %w", err)
	}
	t.Columns = append(t.Columns, totals.Columns(r.years)...)
	sum.Rows = len(t.Rows)
	metrics.UpdateRowsEmitted(sum.Rows)

	if err := r.sink.Write(ctx, t); err != nil {
		return sum, fmt.Errorf("%w: %w", ErrSinkFailed, err)
	}

	sum.Duration = time.Since(start)
	metrics.RecordRunDuration(sum.Duration.Seconds())
	metrics.MarkRunSucceeded()
	log.Info(ctx, "run complete",
		logger.Int("performers", sum.Performers),
		logger.Int("rows", sum.Rows),
		logger.Int("queries", sum.Index.Queries),
		logger.Int("failed_queries", sum.Index.FailedQueries),
		logger.Int("duplicates", sum.Index.Duplicates),
		logger.Int("truncations", sum.Index.Truncations+sum.Totals.Truncations),
		logger.Int("totals_counted", sum.Totals.Counted),
		logger.Int("totals_no_results", sum.Totals.NoResults),
		logger.Int("totals_fetch_errors", sum.Totals.FetchErrors),
		logger.Duration("elapsed", sum.Duration),
	)
	return sum, nil
}

// enrich sets the all_<year> columns on every row. Each row is an
// independent task writing only its own slot, so row order is preserved
// whatever the concurrency.
func (r *Runner) enrich(ctx context.Context, log logger.Logger, t *model.Table) (totals.Tally, error) {
	fetcher := totals.NewFetcher(r.source,
		totals.WithPageSize(r.pageSize),
		totals.WithLogger(log.Named("totals")),
	)

	tallies := make([]totals.Tally, len(t.Rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range t.Rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, tally := fetcher.Enrich(gctx, t.Rows[i], r.years)
			t.Rows[i] = row
			tallies[i] = tally
			log.Debug(gctx, "enriched performer",
				logger.String("performer", row.Name),
				logger.Int("row", i+1),
				logger.Int("of", len(t.Rows)),
			)
			return nil
		})
	}

	var tally totals.Tally
	if err := g.Wait(); err != nil {
		return tally, err
	}
	// Lookups swallow their own errors, so cancellation shows up only here.
	if err := ctx.Err(); err != nil {
		return tally, err
	}
	for _, tl := range tallies {
		tally.Merge(tl)
	}
	return tally, nil
}

package index

import (
	"context"
	"strings"

	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
	"github.com/okian/ringstats/pkg/metrics"
)

// Default builder configuration constants.
const (
	defaultPageSize = 1000
)

// Stats summarises one Build call.
type Stats struct {
	Queries       int // affiliation queries issued
	FailedQueries int // queries whose fetch returned an error
	Events        int // events returned across all queries
	References    int // performer/event pairs registered
	Duplicates    int // ids appended to a list that already held them
	Truncations   int // queries that hit the page size ceiling
}

// Builder fetches affiliation queries year by year and indexes their events.
type Builder struct {
	source       model.RecordSource
	pageSize     int
	affiliations []model.Affiliation
	logger       logger.Logger
}

// NewBuilder creates a Builder reading from source.
func NewBuilder(source model.RecordSource, opts ...Option) *Builder {
	b := &Builder{
		source:       source,
		pageSize:     defaultPageSize,
		affiliations: model.QueryAffiliations,
		logger:       logger.Get().Named("index"),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build issues one query per year and affiliation and registers every
// performer on every returned event. Fetch failures are logged and count as
// empty results; only context cancellation stops the build.
func (b *Builder) Build(ctx context.Context, years model.YearRange) (*YearIndex, Stats, error) {
	ix := newYearIndex()
	var stats Stats

	if err := years.Validate(); err != nil {
		return nil, stats, err
	}

	for _, year := range years.Years() {
		for _, aff := range b.affiliations {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}

			q := model.Query{Kind: model.AffiliationQuery, Affiliation: aff, Year: year}
			stats.Queries++

			events, err := b.source.Fetch(ctx, q)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, stats, ctxErr
				}
				stats.FailedQueries++
				b.logger.Warn(ctx, "affiliation query failed; continuing with no records",
					logger.String("query", q.String()),
					logger.Error(err),
				)
				events = nil
			}

			b.logger.Info(ctx, "fetched affiliation records",
				logger.String("affiliation", aff.String()),
				logger.Int("year", year),
				logger.Int("records", len(events)),
			)
			if model.Truncated(len(events), b.pageSize) {
				stats.Truncations++
				metrics.RecordTruncationWarning(q.Label())
				b.logger.Warn(ctx, "number of returned records is equal to max page size; records may be missing",
					logger.String("query", q.String()),
					logger.Int("page_size", b.pageSize),
				)
			}

			stats.Events += len(events)
			b.ingest(ctx, ix, year, aff, events, &stats)
		}
	}

	metrics.UpdatePerformersIndexed(ix.Len())
	return ix, stats, nil
}

// ingest registers events under (performer, year, aff). Duplicates are kept
// in the raw list and only reported; Union drops them later.
func (b *Builder) ingest(ctx context.Context, ix *YearIndex, year int, aff model.Affiliation, events []model.Event, stats *Stats) {
	for _, ev := range events {
		for _, name := range ev.Performers {
			if strings.TrimSpace(name) == "" {
				b.logger.Debug(ctx, "skipping blank performer name", logger.String("event_id", ev.ID))
				continue
			}

			k := Key{Performer: name, Year: year, Affiliation: aff}
			stats.References++
			if ix.add(k, ev.ID) {
				stats.Duplicates++
				metrics.RecordDuplicateEvent(aff.String())
				b.logger.Warn(ctx, "duplicate performance for performer",
					logger.String("event_id", ev.ID),
					logger.String("performer", name),
					logger.Int("year", year),
					logger.String("affiliation", aff.String()),
				)
			}
		}
	}
}

// Package bbtest provides record source fixtures: an in-memory model.RecordSource
// and an httptest server speaking the BellBoard export format.
package bbtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/ringstats/internal/domain/model"
)

// Source is an in-memory model.RecordSource. Queries without a registered
// result return no events and no error.
type Source struct {
	mu      sync.Mutex
	results map[model.Query][]model.Event
	errs    map[model.Query]error
	calls   []model.Query
}

// NewSource returns an empty Source.
func NewSource() *Source {
	return &Source{
		results: make(map[model.Query][]model.Event),
		errs:    make(map[model.Query]error),
	}
}

// Set registers the events returned for q.
func (s *Source) Set(q model.Query, events ...model.Event) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[q] = events
	return s
}

// Fail makes q return err.
func (s *Source) Fail(q model.Query, err error) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[q] = err
	return s
}

// Fetch implements model.RecordSource.
func (s *Source) Fetch(ctx context.Context, q model.Query) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, q)
	if err, ok := s.errs[q]; ok {
		return nil, err
	}
	out := make([]model.Event, len(s.results[q]))
	copy(out, s.results[q])
	return out, nil
}

// Calls returns the queries received so far, in order.
func (s *Source) Calls() []model.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Query, len(s.calls))
	copy(out, s.calls)
	return out
}

// Guild returns the guild query for year.
func Guild(year int) model.Query {
	return model.Query{Kind: model.AffiliationQuery, Affiliation: model.Guild, Year: year}
}

// County returns the county query for year.
func County(year int) model.Query {
	return model.Query{Kind: model.AffiliationQuery, Affiliation: model.County, Year: year}
}

// Personal returns the personal totals query for a performer and year.
func Personal(name string, year int) model.Query {
	return model.Query{Kind: model.PersonalQuery, Performer: name, Year: year}
}

// Ev builds an event.
func Ev(id string, performers ...string) model.Event {
	return model.Event{ID: id, Performers: performers}
}

// Events builds n events with ids prefix-0 .. prefix-(n-1), each listing performers.
func Events(n int, prefix string, performers ...string) []model.Event {
	out := make([]model.Event, n)
	for i := range out {
		out[i] = Ev(fmt.Sprintf("%s-%d", prefix, i), performers...)
	}
	return out
}

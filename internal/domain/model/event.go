// Package model contains domain models passed between layers.
package model

import (
	"context"
	"fmt"
)

// Event represents a single recorded performance returned by the record source.
// Performers keeps the order the source listed them in.
type Event struct {
	ID         string   // unique within one query result set
	Performers []string // display names, no canonical id upstream
}

// Affiliation tags which query produced an event reference.
type Affiliation string

// Known affiliations. Union is synthetic: it never comes from a query.
const (
	Guild  Affiliation = "guild"
	County Affiliation = "county"
	Union  Affiliation = "union"
)

// QueryAffiliations lists the affiliations backed by a remote query, in fetch order.
var QueryAffiliations = []Affiliation{Guild, County} //nolint:gochecknoglobals // fixed enumeration

// ReportTags lists the per-year column tags of a report row, in column order.
var ReportTags = []Affiliation{Guild, County, Union} //nolint:gochecknoglobals // fixed enumeration

// String implements fmt.Stringer.
func (a Affiliation) String() string { return string(a) }

// Valid reports whether a is one of the known affiliations.
func (a Affiliation) Valid() bool {
	switch a {
	case Guild, County, Union:
		return true
	default:
		return false
	}
}

// QueryKind selects which remote query shape to issue.
type QueryKind int

const (
	// AffiliationQuery fetches every event for one affiliation in one year.
	AffiliationQuery QueryKind = iota
	// PersonalQuery fetches every event for one performer in one year.
	PersonalQuery
)

// Query describes one request against the record source.
type Query struct {
	Kind        QueryKind
	Affiliation Affiliation // set for AffiliationQuery
	Performer   string      // set for PersonalQuery
	Year        int
}

// Label returns a short, low-cardinality name for logs and metrics.
func (q Query) Label() string {
	if q.Kind == PersonalQuery {
		return "personal"
	}
	return q.Affiliation.String()
}

// String implements fmt.Stringer.
func (q Query) String() string {
	if q.Kind == PersonalQuery {
		return fmt.Sprintf("personal(%q, %d)", q.Performer, q.Year)
	}
	return fmt.Sprintf("%s(%d)", q.Affiliation, q.Year)
}

// RecordSource returns the events matching a query. An error means the
// request failed; an empty slice with a nil error means the source had no
// matching events.
type RecordSource interface {
	Fetch(ctx context.Context, q Query) ([]Event, error)
}

// Truncated reports whether a result of n records may have been cut short by
// the page size ceiling.
func Truncated(n, pageSize int) bool {
	return pageSize > 0 && n == pageSize
}

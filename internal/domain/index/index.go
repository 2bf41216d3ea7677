// Package index builds the performer/year/affiliation event index and its union view.
package index

import (
	"slices"

	"github.com/okian/ringstats/internal/domain/model"
)

// Key addresses one ordered list of event ids.
type Key struct {
	Performer   string
	Year        int
	Affiliation model.Affiliation
}

// YearIndex maps (performer, year, affiliation) to the event ids observed for it.
// Absent keys are reported explicitly by IDs; nothing is created on read.
// A YearIndex is not mutated once returned by Builder.Build or Union.
type YearIndex struct {
	entries    map[Key][]string
	performers []string // first-seen order
	known      map[string]struct{}
}

func newYearIndex() *YearIndex {
	return &YearIndex{
		entries: make(map[Key][]string),
		known:   make(map[string]struct{}),
	}
}

// add appends id under k and reports whether k's list already held it.
func (ix *YearIndex) add(k Key, id string) bool {
	if _, ok := ix.known[k.Performer]; !ok {
		ix.known[k.Performer] = struct{}{}
		ix.performers = append(ix.performers, k.Performer)
	}
	list := ix.entries[k]
	dup := slices.Contains(list, id)
	ix.entries[k] = append(list, id)
	return dup
}

func (ix *YearIndex) clone() *YearIndex {
	out := &YearIndex{
		entries:    make(map[Key][]string, len(ix.entries)),
		performers: slices.Clone(ix.performers),
		known:      make(map[string]struct{}, len(ix.known)),
	}
	for k, v := range ix.entries {
		out.entries[k] = slices.Clone(v)
	}
	for p := range ix.known {
		out.known[p] = struct{}{}
	}
	return out
}

// IDs returns a copy of the ids stored for the key and whether the key exists.
func (ix *YearIndex) IDs(performer string, year int, aff model.Affiliation) ([]string, bool) {
	list, ok := ix.entries[Key{Performer: performer, Year: year, Affiliation: aff}]
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

// Count returns the length of the list for the key, 0 when absent.
func (ix *YearIndex) Count(performer string, year int, aff model.Affiliation) int {
	return len(ix.entries[Key{Performer: performer, Year: year, Affiliation: aff}])
}

// Performers returns every performer in first-seen order.
func (ix *YearIndex) Performers() []string {
	return slices.Clone(ix.performers)
}

// Len returns the number of distinct performers.
func (ix *YearIndex) Len() int {
	return len(ix.performers)
}

// Has reports whether the performer has any data for the year.
func (ix *YearIndex) Has(performer string, year int) bool {
	for _, aff := range model.ReportTags {
		if _, ok := ix.entries[Key{Performer: performer, Year: year, Affiliation: aff}]; ok {
			return true
		}
	}
	return false
}

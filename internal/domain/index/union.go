package index

import (
	"github.com/okian/ringstats/internal/domain/dedupe"
	"github.com/okian/ringstats/internal/domain/model"
)

type performerYear struct {
	performer string
	year      int
}

// Union returns a copy of ix where every performer/year with data also carries
// a model.Union list: the affiliation lists concatenated in fetch order with
// repeated ids dropped. This is a set union, so an event reported by both
// guild and county counts once. ix is not modified.
func Union(ix *YearIndex) *YearIndex {
	out := ix.clone()

	pairs := make(map[performerYear]struct{})
	for k := range ix.entries {
		if k.Affiliation == model.Union {
			continue
		}
		pairs[performerYear{performer: k.Performer, year: k.Year}] = struct{}{}
	}

	for p := range pairs {
		lists := make([][]string, 0, len(model.QueryAffiliations))
		for _, aff := range model.QueryAffiliations {
			if list, ok := ix.entries[Key{Performer: p.performer, Year: p.year, Affiliation: aff}]; ok {
				lists = append(lists, list)
			}
		}
		out.entries[Key{Performer: p.performer, Year: p.year, Affiliation: model.Union}] = dedupe.Unique(lists...)
	}

	return out
}

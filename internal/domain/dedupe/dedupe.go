// Package dedupe provides insertion-ordered id sets used to merge event lists.
package dedupe

// Deduper records seen event IDs and remembers the order they first appeared in.
type Deduper interface {
	// SeenAndRecord checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(id string) bool

	// Contains reports whether id was recorded without recording it.
	Contains(id string) bool

	// IDs returns the recorded ids in first-seen order.
	IDs() []string

	Size() int
}

// OrderedSet implements Deduper with a map for membership and a slice for order.
// It is not safe for concurrent use; each merge owns its own set.
type OrderedSet struct {
	seen  map[string]struct{}
	order []string
}

// NewOrderedSet creates an empty set with configuration options.
func NewOrderedSet(opts ...Option) *OrderedSet {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &OrderedSet{
		seen:  make(map[string]struct{}, cfg.capacity),
		order: make([]string, 0, cfg.capacity),
	}
}

// SeenAndRecord checks if id was seen and records it if not.
func (s *OrderedSet) SeenAndRecord(id string) bool {
	if _, exists := s.seen[id]; exists {
		return true
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return false
}

// Contains reports whether id was recorded.
func (s *OrderedSet) Contains(id string) bool {
	_, exists := s.seen[id]
	return exists
}

// IDs returns a copy of the recorded ids in first-seen order.
func (s *OrderedSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Size returns the number of distinct ids recorded.
func (s *OrderedSet) Size() int {
	return len(s.order)
}

// Unique concatenates lists and drops repeated ids, keeping the first occurrence.
func Unique(lists ...[]string) []string {
	n := 0
	for _, l := range lists {
		n += len(l)
	}

	s := NewOrderedSet(WithCapacity(n))
	for _, l := range lists {
		for _, id := range l {
			s.SeenAndRecord(id)
		}
	}
	return s.order
}

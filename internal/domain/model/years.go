package model

import "fmt"

// YearRange is an inclusive range of calendar years.
type YearRange struct {
	From int
	To   int
}

// Validate rejects empty or inverted ranges.
func (r YearRange) Validate() error {
	if r.From <= 0 || r.To <= 0 {
		return fmt.Errorf("%w: years must be positive (from=%d, to=%d)", ErrInvalidYearRange, r.From, r.To)
	}
	if r.From > r.To {
		return fmt.Errorf("%w: from %d is after to %d", ErrInvalidYearRange, r.From, r.To)
	}
	return nil
}

// Years returns every year in the range in ascending order.
func (r YearRange) Years() []int {
	if r.From > r.To {
		return nil
	}
	years := make([]int, 0, r.To-r.From+1)
	for y := r.From; y <= r.To; y++ {
		years = append(years, y)
	}
	return years
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// String implements fmt.Stringer.
func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

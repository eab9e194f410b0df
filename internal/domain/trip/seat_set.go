package trip

import "sort"

// SeatSet is a set of seat identifiers kept sorted and without duplicates.
// It is the source of truth for a trip's occupancy; the free seat count is
// always derived from it rather than stored alongside.
type SeatSet []string

// NewSeatSet builds a normalized SeatSet from the given seat identifiers,
// dropping duplicates and empty entries.
func NewSeatSet(seats []string) SeatSet {
	seen := make(map[string]struct{}, len(seats))
	result := make(SeatSet, 0, len(seats))
	for _, s := range seats {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Contains reports whether the seat identifier is in the set.
func (s SeatSet) Contains(seat string) bool {
	i := sort.SearchStrings(s, seat)
	return i < len(s) && s[i] == seat
}

// Intersect returns the seats present in both sets, sorted.
func (s SeatSet) Intersect(other SeatSet) SeatSet {
	result := make(SeatSet, 0)
	for _, seat := range other {
		if s.Contains(seat) {
			result = append(result, seat)
		}
	}
	sort.Strings(result)
	return result
}

// Union returns a new set containing the seats of both sets.
func (s SeatSet) Union(other SeatSet) SeatSet {
	merged := make([]string, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return NewSeatSet(merged)
}

// Without returns a new set with the given seats removed. Seats not present
// are ignored.
func (s SeatSet) Without(other SeatSet) SeatSet {
	result := make(SeatSet, 0, len(s))
	for _, seat := range s {
		if !other.Contains(seat) {
			result = append(result, seat)
		}
	}
	return result
}

// Strings returns the seat identifiers as a plain string slice.
func (s SeatSet) Strings() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Package interval turns word-level speech timestamps into the spans that get
// cut out of a video.
//
// The central operation is Merge: a greedy left-to-right sweep over intervals
// sorted by start time that coalesces any two spans separated by a gap no
// larger than the merge threshold.
package interval

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Threshold bounds and default, in seconds.
const (
	// DefaultThreshold is the gap below which neighbouring words are kept in one segment.
	DefaultThreshold = 0.3

	// MaxThreshold is the largest accepted merge threshold.
	MaxThreshold = 1.0

	// ThresholdStep is the granularity offered by interactive front-ends.
	// Values between steps are accepted as-is.
	ThresholdStep = 0.1
)

// Interval is a span of the source media, in seconds, believed to contain speech.
// End < Start is representable: Merge tolerates it, extraction skips it.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns End - Start. It is negative for malformed intervals.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Valid reports whether the interval has a strictly positive width.
func (iv Interval) Valid() bool {
	return iv.End > iv.Start
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return other.Start >= iv.Start && other.End <= iv.End
}

// String returns a compact representation for logging, e.g. "[1.200s-2.000s]".
func (iv Interval) String() string {
	return fmt.Sprintf("[%.3fs-%.3fs]", iv.Start, iv.End)
}

// Merge coalesces intervals whose gap is at most threshold seconds.
//
// Intervals are stable-sorted by Start and swept once; the current span is
// extended to max(current.End, next.End) whenever next.Start-current.End <= threshold.
// The sweep is greedy: it never revisits a closed span, so results are exact
// for well-formed input but not a global interval union when ends are wildly
// out of order. The input slice is not modified.
//
// Merge never fails. Empty input yields an empty, non-nil slice.
func Merge(intervals []Interval, threshold float64) []Interval {
	if len(intervals) == 0 {
		return []Interval{}
	}

	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b Interval) int {
		return cmp.Compare(a.Start, b.Start)
	})

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if next.Start-current.End <= threshold {
			current.End = max(current.End, next.End)
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// Total returns the summed duration of all valid intervals.
// Malformed intervals contribute nothing.
func Total(intervals []Interval) float64 {
	var total float64
	for _, iv := range intervals {
		if iv.Valid() {
			total += iv.Duration()
		}
	}
	return total
}

// ValidateThreshold checks that t is a usable merge threshold.
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: %v is not a number", ErrInvalidThreshold, t)
	}
	if t < 0 || t > MaxThreshold {
		return fmt.Errorf("%w: %.2f (must be between 0.0 and %.1f seconds)", ErrInvalidThreshold, t, MaxThreshold)
	}
	return nil
}

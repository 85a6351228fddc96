package numerics

import (
	"fmt"
	"math"
)

// Range is a closed interval of ints used to validate team and player counts.
type Range struct {
	Min int
	Max int
}

// Inclusive returns [min, max]. It panics when min > max since ranges are
// only built from constants.
func Inclusive(min, max int) Range {
	if min > max {
		panic(fmt.Sprintf("numerics: range minimum %d > maximum %d", min, max))
	}
	return Range{Min: min, Max: max}
}

// Exactly returns [v, v].
func Exactly(v int) Range {
	return Range{Min: v, Max: v}
}

// AtLeast returns [min, +inf).
func AtLeast(min int) Range {
	return Range{Min: min, Max: math.MaxInt}
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v int) bool {
	return r.Min <= v && v <= r.Max
}

func (r Range) String() string {
	if r.Max == math.MaxInt {
		return fmt.Sprintf("[%d, inf)", r.Min)
	}
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

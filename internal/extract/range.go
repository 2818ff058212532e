package extract

import "math"

// Unbounded is the Upper value meaning "end of document". It is resolved
// against the document length at lookup time.
const Unbounded = math.MaxInt

// Range is an inclusive [Lower, Upper] byte-offset window over a document.
// It is a plain value; narrowing always yields a new Range.
type Range struct {
	Lower int
	Upper int
}

// NewRange returns the window [lower, upper].
func NewRange(lower, upper int) Range {
	return Range{Lower: lower, Upper: upper}
}

// Whole returns the default search window covering the entire document.
func Whole() Range {
	return Range{Lower: 0, Upper: Unbounded}
}

// Empty reports whether the window contains no offsets.
func (r Range) Empty() bool {
	return r.Lower < 0 || r.Lower > r.Upper
}

// Size returns the number of offsets covered by the window.
func (r Range) Size() int {
	if r.Empty() {
		return 0
	}
	return r.Upper - r.Lower + 1
}

// WithLower returns a copy of r starting at lower.
func (r Range) WithLower(lower int) Range {
	r.Lower = lower
	return r
}

// WithUpper returns a copy of r ending at upper.
func (r Range) WithUpper(upper int) Range {
	r.Upper = upper
	return r
}

func (r Range) resolve(docLen int) Range {
	if r.Upper == Unbounded {
		r.Upper = docLen - 1
	}
	return r
}

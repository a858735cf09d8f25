package idxrange

import "errors"

// ErrEmptyRange is returned when a constructor would otherwise produce an
// empty IndexRange. Empty ranges are disallowed by construction.
var ErrEmptyRange = errors.New("idxrange: range must contain at least one index")

// ErrReversedRange is returned when a half-open or closed range is given
// with its bounds in the wrong order.
var ErrReversedRange = errors.New("idxrange: reversed range bounds")

// IndexRange is a non-empty closed range [start,end] over the Idx space.
type IndexRange struct {
	start, end Idx
}

// New builds a closed range starting at start and containing length
// consecutive indices. It fails if length is zero.
func New(start Idx, length uint64) (IndexRange, error) {
	if length == 0 {
		return IndexRange{}, ErrEmptyRange
	}
	end := start.AddUint64(length - 1)
	return IndexRange{start: start, end: end}, nil
}

// Single builds a one-element range.
func Single(i Idx) IndexRange {
	return IndexRange{start: i, end: i}
}

// Span builds a closed range [a,b]. It fails if b < a.
func Span(a, b Idx) (IndexRange, error) {
	if b.Cmp(a) < 0 {
		return IndexRange{}, ErrReversedRange
	}
	return IndexRange{start: a, end: b}, nil
}

// FromHalfOpen builds a range from the half-open form [a,b). It fails if
// the interval is empty or reversed.
func FromHalfOpen(a, b Idx) (IndexRange, error) {
	if b.Cmp(a) < 0 {
		return IndexRange{}, ErrReversedRange
	}
	if b.Cmp(a) == 0 {
		return IndexRange{}, ErrEmptyRange
	}
	return IndexRange{start: a, end: b.Sub1()}, nil
}

// ToHalfOpen returns the [a,b) form of r.
func (r IndexRange) ToHalfOpen() (a, b Idx) {
	return r.start, r.end.Add1()
}

// Start returns the first index in r.
func (r IndexRange) Start() Idx { return r.start }

// End returns the last index in r (inclusive).
func (r IndexRange) End() Idx { return r.end }

// Len returns the number of indices covered by r.
func (r IndexRange) Len() Idx {
	return r.end.Sub(r.start).Add1()
}

// ToIndexRange implements Ranger, so IndexRange itself is always a valid,
// never-bypassed range type.
func (r IndexRange) ToIndexRange() (IndexRange, error) {
	return r, nil
}

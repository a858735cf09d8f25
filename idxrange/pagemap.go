package idxrange

// PageSlice is the portion of one page touched by a request:
// {page, first, last} with 0 <= first <= last < P.
type PageSlice struct {
	Page         Idx
	First, Last int
}

// Len returns last-first+1, the number of elements this slice covers.
func (s PageSlice) Len() int {
	return s.Last - s.First + 1
}

// Full reports whether s spans the entire page under page size p.
func (s PageSlice) Full(p int) bool {
	return s.First == 0 && s.Last == p-1
}

// Slices returns the ordered, non-empty sequence of PageSlice values that
// cover r under page size p. For a single-element range this is one
// slice; for a span it is a possibly-partial first slice, zero or more
// full interior slices, and a possibly-partial last slice.
func Slices(r IndexRange, p int) []PageSlice {
	if p <= 0 {
		panic("idxrange: non-positive page size")
	}
	pa, oa := r.start.DivMod(p)
	pb, ob := r.end.DivMod(p)
	if pa.Cmp(pb) == 0 {
		return []PageSlice{{Page: pa, First: oa, Last: ob}}
	}
	out := make([]PageSlice, 0, 2)
	out = append(out, PageSlice{Page: pa, First: oa, Last: p - 1})
	for page := pa.Add1(); page.Cmp(pb) < 0; page = page.Add1() {
		out = append(out, PageSlice{Page: page, First: 0, Last: p - 1})
	}
	out = append(out, PageSlice{Page: pb, First: 0, Last: ob})
	return out
}

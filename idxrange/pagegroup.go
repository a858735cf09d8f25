package idxrange

import "fmt"

// PageGroup is a contiguous aggregate of page slices: {from,first,to,last}.
// The invariant is that every page strictly between From and To is full
// under the page size the group was built with.
type PageGroup struct {
	From, To     Idx
	First, Last int
}

// GroupFromSlice lifts a single PageSlice into a one-page PageGroup.
func GroupFromSlice(s PageSlice) PageGroup {
	return PageGroup{From: s.Page, To: s.Page, First: s.First, Last: s.Last}
}

// Extend fuses g with the next contiguous group under page size p. It
// succeeds (ok=true) iff either:
//   - other continues within the same page (g.Last+1 == other.First and
//     g.To == other.From), or
//   - g ends at the page boundary (g.Last == p-1) and other begins a new
//     page at offset 0 (g.To.Add1() == other.From && other.First == 0).
//
// On success the returned group spans From(g)..To(other).
func (g PageGroup) Extend(other PageGroup, p int) (PageGroup, bool) {
	samePage := g.To.Cmp(other.From) == 0 && g.Last+1 == other.First
	nextPage := g.Last == p-1 && other.First == 0 && g.To.Add1().Cmp(other.From) == 0
	if !samePage && !nextPage {
		return PageGroup{}, false
	}
	return PageGroup{From: g.From, To: other.To, First: g.First, Last: other.Last}, true
}

// Slices expands g back into its constituent PageSlice values under page
// size p.
func (g PageGroup) Slices(p int) []PageSlice {
	if g.From.Cmp(g.To) == 0 {
		return []PageSlice{{Page: g.From, First: g.First, Last: g.Last}}
	}
	out := make([]PageSlice, 0, 2)
	out = append(out, PageSlice{Page: g.From, First: g.First, Last: p - 1})
	for page := g.From.Add1(); page.Cmp(g.To) < 0; page = page.Add1() {
		out = append(out, PageSlice{Page: page, First: 0, Last: p - 1})
	}
	out = append(out, PageSlice{Page: g.To, First: 0, Last: g.Last})
	return out
}

// ToIndexRange is the inverse of GroupFromIndexRange: it recovers the
// original IndexRange the group was aggregated from.
func (g PageGroup) ToIndexRange(p int) (IndexRange, error) {
	start := MulAddInt(g.From, p, g.First)
	end := MulAddInt(g.To, p, g.Last)
	return Span(start, end)
}

// GroupFromIndexRange builds the single PageGroup that exactly covers r
// under page size p, folding Slices(r,p) through Extend. This always
// succeeds because slices produced by Slices are contiguous by
// construction; a failure indicates a bug in Slices or Extend.
func GroupFromIndexRange(r IndexRange, p int) PageGroup {
	slices := Slices(r, p)
	g := GroupFromSlice(slices[0])
	for _, s := range slices[1:] {
		next := GroupFromSlice(s)
		merged, ok := g.Extend(next, p)
		if !ok {
			panic(fmt.Sprintf("idxrange: non-contiguous slices for range %v under page size %d", r, p))
		}
		g = merged
	}
	return g
}

package cachalot

import (
	"testing"

	"github.com/lanz-project/cachalot/idxrange"
)

// page builds the one-page, fully-spanned PageSlice for page number n
// under page size p, the shape probeSpans produces via idxrange.Slices
// for any page strictly interior to a probed range.
func page(n uint64, p int) idxrange.PageSlice {
	return idxrange.PageSlice{Page: idxrange.FromUint64(n), First: 0, Last: p - 1}
}

func tag(cached bool, s idxrange.PageSlice) SpanTag {
	return SpanTag{Cached: cached, Group: idxrange.GroupFromSlice(s)}
}

func TestCoalesceEmpty(t *testing.T) {
	if got := coalesce(nil, 4); got != nil {
		t.Fatalf("coalesce(nil) = %v, want nil", got)
	}
}

func TestCoalesceSingleTagPassesThrough(t *testing.T) {
	in := []SpanTag{tag(true, page(0, 4))}
	out := coalesce(in, 4)
	if len(out) != 1 {
		t.Fatalf("got %d spans, want 1", len(out))
	}
	if out[0].Cached != true {
		t.Fatalf("Cached = %v, want true", out[0].Cached)
	}
}

// TestCoalesceMergesUniformRun asserts the maximal-length, uniform-
// cached-ness partitioning invariant (spec §8): a run of contiguous
// same-cached-ness page tags collapses into a single span covering
// every constituent page.
func TestCoalesceMergesUniformRun(t *testing.T) {
	p := 4
	in := []SpanTag{
		tag(true, page(0, p)),
		tag(true, page(1, p)),
		tag(true, page(2, p)),
	}
	out := coalesce(in, p)
	if len(out) != 1 {
		t.Fatalf("got %d spans, want 1 merged span", len(out))
	}
	if !out[0].Cached {
		t.Fatal("merged span should be Cached")
	}
	slices := out[0].Group.Slices(p)
	if len(slices) != 3 {
		t.Fatalf("merged span expands to %d slices, want 3", len(slices))
	}
}

// TestCoalesceSplitsOnCachedChange ensures a run never merges across a
// cached/missing boundary, even when the underlying pages are
// physically contiguous.
func TestCoalesceSplitsOnCachedChange(t *testing.T) {
	p := 4
	in := []SpanTag{
		tag(true, page(0, p)),
		tag(true, page(1, p)),
		tag(false, page(2, p)),
		tag(false, page(3, p)),
		tag(true, page(4, p)),
	}
	out := coalesce(in, p)
	if len(out) != 3 {
		t.Fatalf("got %d spans, want 3 (cached, missing, cached)", len(out))
	}
	wantCached := []bool{true, false, true}
	for i, want := range wantCached {
		if out[i].Cached != want {
			t.Fatalf("span %d: Cached = %v, want %v", i, out[i].Cached, want)
		}
	}
	if n := len(out[0].Group.Slices(p)); n != 2 {
		t.Fatalf("first span covers %d pages, want 2", n)
	}
	if n := len(out[1].Group.Slices(p)); n != 2 {
		t.Fatalf("second span covers %d pages, want 2", n)
	}
	if n := len(out[2].Group.Slices(p)); n != 1 {
		t.Fatalf("third span covers %d pages, want 1", n)
	}
}

// TestCoalesceSplitsOnNonContiguousGap ensures a gap in the page
// sequence (not merely a cached-ness change) still forces a split even
// when both tags have the same cached-ness.
func TestCoalesceSplitsOnNonContiguousGap(t *testing.T) {
	p := 4
	in := []SpanTag{
		tag(true, page(0, p)),
		tag(true, page(5, p)),
	}
	out := coalesce(in, p)
	if len(out) != 2 {
		t.Fatalf("got %d spans, want 2 (non-contiguous pages never merge)", len(out))
	}
}

// TestCoalescePartialHeadAndTail exercises the case probeSpans actually
// produces at the ends of a probed IndexRange: a partial first/last
// page (First/Last not spanning the whole page) adjacent to full pages.
func TestCoalescePartialHeadAndTail(t *testing.T) {
	p := 4
	head := idxrange.PageSlice{Page: idxrange.FromUint64(0), First: 2, Last: p - 1}
	tail := idxrange.PageSlice{Page: idxrange.FromUint64(2), First: 0, Last: 1}
	in := []SpanTag{
		tag(false, head),
		tag(false, page(1, p)),
		tag(false, tail),
	}
	out := coalesce(in, p)
	if len(out) != 1 {
		t.Fatalf("got %d spans, want 1 merged span", len(out))
	}
	slices := out[0].Group.Slices(p)
	if len(slices) != 3 {
		t.Fatalf("merged span expands to %d slices, want 3", len(slices))
	}
	if slices[0].First != 2 || slices[len(slices)-1].Last != 1 {
		t.Fatalf("merged span lost its partial head/tail offsets: %+v", slices)
	}
}

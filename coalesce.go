package cachalot

import "github.com/lanz-project/cachalot/idxrange"

// SpanTag is the coalescer's output: a maximal contiguous run of page
// slices that are either all cached or all missing (spec §3's SpanTag,
// §4.4).
type SpanTag struct {
	Cached bool
	Group  idxrange.PageGroup
}

// coalesce fuses adjacent tags of equal Cached-ness whose groups are
// contiguous under page size p, via a left-to-right scan-and-flush —
// the "aggregate-then-process stream" pattern spec design note 9 calls
// out. Input tags must already be in ascending-index order (as produced
// by probeSpans over idxrange.Slices), so no sorting step is needed,
// unlike ints.Intervals.Compress in the teacher (which sorts because its
// inputs may arrive in any order).
func coalesce(tags []SpanTag, p int) []SpanTag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]SpanTag, 0, len(tags))
	cur := tags[0]
	for _, t := range tags[1:] {
		if cur.Cached == t.Cached {
			if merged, ok := cur.Group.Extend(t.Group, p); ok {
				cur.Group = merged
				continue
			}
		}
		out = append(out, cur)
		cur = t
	}
	out = append(out, cur)
	return out
}

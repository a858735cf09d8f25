package idxrange

import "testing"

func sumLen(slices []PageSlice) int {
	n := 0
	for _, s := range slices {
		n += s.Len()
	}
	return n
}

func TestSlicesCoverage(t *testing.T) {
	cases := []struct {
		name       string
		start, end uint64
		p          int
	}{
		{"single page", 0, 1023, 1024},
		{"two pages partial tail", 0, 1500, 1024},
		{"partial head and tail", 512, 4095, 1024},
		{"one element", 7, 7, 1024},
		{"exact three pages", 1024, 1024*3 - 1, 1024},
		{"small page size", 0, 9, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := Span(FromUint64(c.start), FromUint64(c.end))
			if err != nil {
				t.Fatalf("Span: %v", err)
			}
			slices := Slices(r, c.p)
			if len(slices) == 0 {
				t.Fatal("expected at least one slice")
			}
			want := int(c.end - c.start + 1)
			if got := sumLen(slices); got != want {
				t.Fatalf("sum of slice lengths = %d, want %d", got, want)
			}
			firstPage, firstOff := FromUint64(c.start).DivMod(c.p)
			if slices[0].Page.Cmp(firstPage) != 0 || slices[0].First != firstOff {
				t.Fatalf("first slice = %+v, want page %v offset %d", slices[0], firstPage, firstOff)
			}
			// contiguity: each slice starts where the previous ended
			for i := 1; i < len(slices); i++ {
				prev, cur := slices[i-1], slices[i]
				if prev.Last == c.p-1 {
					if cur.First != 0 || cur.Page.Cmp(prev.Page.Add1()) != 0 {
						t.Fatalf("non-contiguous slices %+v -> %+v", prev, cur)
					}
				}
			}
		})
	}
}

func TestSlicesSingleElement(t *testing.T) {
	r := Single(FromUint64(5))
	slices := Slices(r, 4)
	if len(slices) != 1 {
		t.Fatalf("expected 1 slice, got %d", len(slices))
	}
	if slices[0].First != 1 || slices[0].Last != 1 {
		t.Fatalf("unexpected slice %+v", slices[0])
	}
}

func TestRoundTripIndexRange(t *testing.T) {
	cases := []struct{ start, end uint64 }{
		{0, 1023}, {0, 1500}, {512, 4095}, {2048, 4095}, {7, 7},
	}
	for _, c := range cases {
		r, err := Span(FromUint64(c.start), FromUint64(c.end))
		if err != nil {
			t.Fatalf("Span: %v", err)
		}
		g := GroupFromIndexRange(r, 1024)
		got, err := g.ToIndexRange(1024)
		if err != nil {
			t.Fatalf("ToIndexRange: %v", err)
		}
		if got.Start().Cmp(r.Start()) != 0 || got.End().Cmp(r.End()) != 0 {
			t.Fatalf("round trip mismatch: got [%v,%v], want [%v,%v]", got.Start(), got.End(), r.Start(), r.End())
		}
	}
}

func TestExtendRejectsGap(t *testing.T) {
	a := GroupFromSlice(PageSlice{Page: FromUint64(0), First: 0, Last: 1023})
	b := GroupFromSlice(PageSlice{Page: FromUint64(2), First: 0, Last: 10})
	if _, ok := a.Extend(b, 1024); ok {
		t.Fatal("expected Extend to reject a gap across an unvisited page")
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(FromUint64(0), 0); err != ErrEmptyRange {
		t.Fatalf("expected ErrEmptyRange, got %v", err)
	}
}

func TestSpanRejectsReversed(t *testing.T) {
	if _, err := Span(FromUint64(10), FromUint64(5)); err != ErrReversedRange {
		t.Fatalf("expected ErrReversedRange, got %v", err)
	}
}

// Package idxrange implements the range algebra for cachalot: the mapping
// between a closed index range and the ordered sequence of per-page slices
// that cover it.
package idxrange

import (
	"fmt"
	"math/big"
)

// Idx is an element of the 128-bit unsigned index space. Go has no native
// 128-bit integer, so Idx is carried as a pair of 64-bit limbs; Cmp,
// Add1 and Sub1 work on the limbs directly and the remaining arithmetic
// is routed through math/big; no third-party 128-bit integer
// type appeared anywhere in the example corpus, so this is plain stdlib.
type Idx struct {
	hi, lo uint64
}

// FromUint64 builds an Idx from a machine-sized value.
func FromUint64(v uint64) Idx {
	return Idx{hi: 0, lo: v}
}

func (i Idx) big() *big.Int {
	b := new(big.Int).SetUint64(i.hi)
	b.Lsh(b, 64)
	b.Or(b, new(big.Int).SetUint64(i.lo))
	return b
}

func fromBig(b *big.Int) Idx {
	mask := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(b, mask).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return Idx{hi: hi, lo: lo}
}

// Cmp returns -1, 0 or 1 as i is less than, equal to, or greater than j.
func (i Idx) Cmp(j Idx) int {
	if i.hi != j.hi {
		if i.hi < j.hi {
			return -1
		}
		return 1
	}
	switch {
	case i.lo < j.lo:
		return -1
	case i.lo > j.lo:
		return 1
	default:
		return 0
	}
}

// Add1 returns i+1.
func (i Idx) Add1() Idx {
	lo := i.lo + 1
	hi := i.hi
	if lo == 0 { // carried
		hi++
	}
	return Idx{hi: hi, lo: lo}
}

// Sub1 returns i-1. Undefined if i is zero.
func (i Idx) Sub1() Idx {
	lo := i.lo - 1
	hi := i.hi
	if i.lo == 0 { // borrowed
		hi--
	}
	return Idx{hi: hi, lo: lo}
}

// AddUint64 returns i+n.
func (i Idx) AddUint64(n uint64) Idx {
	return fromBig(new(big.Int).Add(i.big(), new(big.Int).SetUint64(n)))
}

// Sub returns i-j as an Idx. Panics if j > i; callers must only
// subtract within a valid, already-ordered range.
func (i Idx) Sub(j Idx) Idx {
	if i.Cmp(j) < 0 {
		panic("idxrange: Sub of out-of-order Idx values")
	}
	return fromBig(new(big.Int).Sub(i.big(), j.big()))
}

// DivMod divides i by the page size p (a plain machine int, always far
// smaller than the 128-bit index space) and returns the page number and
// the in-page offset.
func (i Idx) DivMod(p int) (page Idx, offset int) {
	if p <= 0 {
		panic("idxrange: non-positive page size")
	}
	q, r := new(big.Int).QuoRem(i.big(), big.NewInt(int64(p)), new(big.Int))
	return fromBig(q), int(r.Int64())
}

// MulAddInt computes page*p + offset, the inverse of DivMod.
func MulAddInt(page Idx, p int, offset int) Idx {
	prod := new(big.Int).Mul(page.big(), big.NewInt(int64(p)))
	prod.Add(prod, big.NewInt(int64(offset)))
	return fromBig(prod)
}

// String renders i in unpadded base-10, the format used for page numbers
// and digest directory names on disk.
func (i Idx) String() string {
	return i.big().String()
}

// Uint64 reports whether i fits in 64 bits, returning the value if so.
func (i Idx) Uint64() (uint64, bool) {
	return i.lo, i.hi == 0
}

func (i Idx) GoString() string {
	return fmt.Sprintf("idxrange.Idx(%s)", i.String())
}

package cachalot

import (
	"context"

	"github.com/lanz-project/cachalot/idxrange"
)

// Ranger is implemented by any range type a caller's producer natively
// speaks. IndexRange itself always satisfies Ranger trivially (see
// idxrange.IndexRange.ToIndexRange); richer range types that cannot be
// expressed as a non-empty integer range should return an error from
// ToIndexRange, which triggers the bypass path (spec §4.5 step 1, §7).
type Ranger interface {
	ToIndexRange() (idxrange.IndexRange, error)
}

// IdentityRange is the trivial fromIndexRange converter for callers whose
// native range type already is idxrange.IndexRange.
func IdentityRange(ir idxrange.IndexRange) idxrange.IndexRange { return ir }

// Producer is a caller-supplied async data source: given a key and a
// range, it must produce exactly r.Len() values of V, in ascending-index
// order, deterministically (spec §6's producer contract). The returned
// channel is expected to be closed after exactly that many values; the
// producer owns canceling its own background work when ctx is done.
type Producer[K any, R Ranger, V any] func(ctx context.Context, key K, r R) <-chan V

// Outcome is one item of a fallible producer's stream: either a value or
// an error, mirroring Result<V,E> from spec §4.8.
type Outcome[V any, E any] struct {
	Value  V
	Err    E
	HasErr bool
}

// Ok wraps a successfully produced value.
func Ok[V any, E any](v V) Outcome[V, E] {
	return Outcome[V, E]{Value: v}
}

// Fail wraps a producer-reported error.
func Fail[V any, E any](err E) Outcome[V, E] {
	return Outcome[V, E]{Err: err, HasErr: true}
}

// FallibleProducer is the Result<V,E>-yielding counterpart to Producer,
// used by TryLoad.
type FallibleProducer[K any, R Ranger, V any, E any] func(ctx context.Context, key K, r R) <-chan Outcome[V, E]

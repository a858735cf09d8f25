package cachalot

import (
	"context"

	"github.com/lanz-project/cachalot/idxrange"
	"github.com/lanz-project/cachalot/keyderiver"
	"github.com/lanz-project/cachalot/pagestore"
)

// tryCachePages is the fallible counterpart of cachePages: it pulls
// slice.Len() outcomes per slice, stops and surfaces the first
// producer-reported error without writing that page (spec §4.8), and
// otherwise forwards every successful value individually so a caller can
// observe exactly which index failed (see spec §8 scenario 5:
// Ok(0), Ok(1), Err(E)).
//
// It returns false once the stream should stop entirely — either because
// ctx was cancelled, the producer ended early, or a producer error was
// surfaced. A surfaced producer error is intentionally treated as
// terminal for the whole Load, not just the current slice: letting later
// spans keep pulling after an upstream producer has already broken its
// ordering contract would risk caching pages built from an inconsistent
// view of the source (see DESIGN.md's resolution of this Open Question).
func tryCachePages[V any, E any](ctx context.Context, cfg *Config[V], dir string, group idxrange.PageGroup, prod <-chan Outcome[V, E], out chan<- Outcome[V, E]) bool {
	for _, slice := range group.Slices(cfg.PageSize) {
		buf := make([]V, 0, slice.Len())
		for i := 0; i < slice.Len(); i++ {
			var item Outcome[V, E]
			var ok bool
			select {
			case item, ok = <-prod:
			case <-ctx.Done():
				return false
			}
			if !ok {
				cfg.logger().Printf("cachalot: fallible producer stream ended early at slice %+v, item %d/%d", slice, i, slice.Len())
				return false
			}
			if item.HasErr {
				select {
				case out <- item:
				case <-ctx.Done():
				}
				return false
			}
			buf = append(buf, item.Value)
			select {
			case out <- Ok[V, E](item.Value):
			case <-ctx.Done():
				return false
			}
		}
		if slice.Full(cfg.PageSize) {
			path := pagestore.PagePath(dir, slice.Page)
			err := pagestore.WriteFull(ctx, cfg.pool(), path, cfg.PageSize, buf)
			mustNotFail(err, "write page")
		}
	}
	return true
}

// TryLoad is the fallible StoreProtocol: the producer yields
// Outcome[V,E] instead of bare V. A producer error is forwarded to the
// caller as an Outcome with HasErr set and never reaches disk — the
// directory is left exactly as it was, so a retry with a producer that
// now succeeds will fill in the missing page (spec §4.8, §7). Any
// environmental (disk) failure still panics, same as Load.
func TryLoad[K any, R Ranger, V any, E any](
	ctx context.Context,
	key K,
	r R,
	fromIndexRange func(idxrange.IndexRange) R,
	producer FallibleProducer[K, R, V, E],
	cfg *Config[V],
) <-chan Outcome[V, E] {
	out := make(chan Outcome[V, E])
	go func() {
		defer close(out)

		ir, err := r.ToIndexRange()
		if err != nil {
			for item := range producer(ctx, key, r) {
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
				if item.HasErr {
					return
				}
			}
			return
		}

		dir := keyderiver.Derive[V](cfg.Root, cfg.PageSize, key)
		exists, err := pagestore.DirExists(ctx, cfg.pool(), dir)
		mustNotFail(err, "probe cache directory")

		if !exists {
			mustNotFail(pagestore.EnsureDir(ctx, cfg.pool(), dir), "create cache directory")
			group := idxrange.GroupFromIndexRange(ir, cfg.PageSize)
			prod := producer(ctx, key, fromIndexRange(ir))
			tryCachePages(ctx, cfg, dir, group, prod, out)
			return
		}

		tags, err := probeSpans(ctx, cfg.pool(), dir, ir, cfg.PageSize)
		mustNotFail(err, "probe pages")

		for _, tag := range tags {
			if tag.Cached {
				for _, s := range tag.Group.Slices(cfg.PageSize) {
					path := pagestore.PagePath(dir, s.Page)
					vals, err := pagestore.Read[V](ctx, cfg.pool(), path, s)
					mustNotFail(err, "read page")
					for _, v := range vals {
						select {
						case out <- Ok[V, E](v):
						case <-ctx.Done():
							return
						}
					}
				}
				continue
			}
			subRange, err := tag.Group.ToIndexRange(cfg.PageSize)
			mustNotFail(err, "recover range from page group")
			prod := producer(ctx, key, fromIndexRange(subRange))
			if !tryCachePages(ctx, cfg, dir, tag.Group, prod, out) {
				return
			}
		}
	}()
	return out
}

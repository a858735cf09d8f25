package cachalot

import (
	"context"

	"github.com/lanz-project/cachalot/idxrange"
	"github.com/lanz-project/cachalot/internal/blocking"
	"github.com/lanz-project/cachalot/keyderiver"
	"github.com/lanz-project/cachalot/pagestore"
)

// probeSpans walks the PageSlice sequence covering r, probes each page
// file's existence, and coalesces the resulting per-slice tags into
// maximal same-cached-ness spans (spec §4.4).
func probeSpans(ctx context.Context, pool *blocking.Pool, dir string, r idxrange.IndexRange, p int) ([]SpanTag, error) {
	slices := idxrange.Slices(r, p)
	tags := make([]SpanTag, len(slices))
	for i, s := range slices {
		path := pagestore.PagePath(dir, s.Page)
		ok, err := pagestore.Exists(ctx, pool, path)
		if err != nil {
			return nil, err
		}
		tags[i] = SpanTag{Cached: ok, Group: idxrange.GroupFromSlice(s)}
	}
	return coalesce(tags, p), nil
}

// cachePages consumes prod page-slice-at-a-time over group, writing only
// full pages to disk and forwarding every slice's buffer to out (spec
// §4.6). It returns false if the caller's context was cancelled or the
// producer ended its stream early (a contract violation per §4.6 whose
// precise fallout is left unspecified, but which must never corrupt
// on-disk state: only full slices ever reach WriteFull, and only after a
// complete, uninterrupted pull).
func cachePages[V any](ctx context.Context, cfg *Config[V], dir string, group idxrange.PageGroup, prod <-chan V, out chan<- []V) bool {
	for _, slice := range group.Slices(cfg.PageSize) {
		buf := make([]V, 0, slice.Len())
		for i := 0; i < slice.Len(); i++ {
			select {
			case v, ok := <-prod:
				if !ok {
					cfg.logger().Printf("cachalot: producer stream ended early at slice %+v, item %d/%d", slice, i, slice.Len())
					return false
				}
				buf = append(buf, v)
			case <-ctx.Done():
				return false
			}
		}
		if slice.Full(cfg.PageSize) {
			path := pagestore.PagePath(dir, slice.Page)
			err := pagestore.WriteFull(ctx, cfg.pool(), path, cfg.PageSize, buf)
			mustNotFail(err, "write page")
		}
		select {
		case out <- buf:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// Load implements the infallible StoreProtocol: it returns a channel of
// ascending-index value chunks that is byte-for-byte equivalent to
// calling producer(ctx, key, r) directly, except that pages already
// fully produced by a prior Load with the same (key, V, PageSize) are
// served from disk.
//
// fromIndexRange reconstructs a native R from an idxrange.IndexRange;
// callers whose R already is idxrange.IndexRange can pass IdentityRange.
// If r.ToIndexRange() fails, Load bypasses the cache entirely: no
// directory is created, and producer's stream is forwarded verbatim
// (spec §4.5 step 1, §7).
func Load[K any, R Ranger, V any](
	ctx context.Context,
	key K,
	r R,
	fromIndexRange func(idxrange.IndexRange) R,
	producer Producer[K, R, V],
	cfg *Config[V],
) <-chan []V {
	out := make(chan []V)
	go func() {
		defer close(out)

		ir, err := r.ToIndexRange()
		if err != nil {
			for v := range producer(ctx, key, r) {
				select {
				case out <- []V{v}:
				case <-ctx.Done():
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
			cachePages(ctx, cfg, dir, group, prod, out)
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
					select {
					case out <- vals:
					case <-ctx.Done():
						return
					}
				}
				continue
			}
			subRange, err := tag.Group.ToIndexRange(cfg.PageSize)
			mustNotFail(err, "recover range from page group")
			prod := producer(ctx, key, fromIndexRange(subRange))
			if !cachePages(ctx, cfg, dir, tag.Group, prod, out) {
				return
			}
		}
	}()
	return out
}

// Package cachalot is a range-keyed, paged, on-disk memoization cache for
// asynchronous data producers. Given an opaque key K and an integer
// range, a producer yields a stream of fixed-size plain-data values V;
// Load and TryLoad return a byte-for-byte equivalent stream, transparently
// substituting disk reads for recomputation wherever a prior call already
// produced and persisted a full page.
//
// The orchestration is grounded on tenant/dcache.Cache in the teacher
// repo, generalized from a single mmap'd blob keyed by ETag to a paged
// range cache keyed by (type, page size, user key), with disk I/O routed
// through an internal/blocking.Pool instead of a worker-pool-backed
// mmap queue.
package cachalot

import (
	"github.com/lanz-project/cachalot/internal/blocking"
	"github.com/lanz-project/cachalot/internal/clog"
	"github.com/lanz-project/cachalot/pagestore"
)

// DefaultPageSize is the page size Sugar applies when no `pagesize=`
// option sets a different one; the `bytes=`/`kbs=`/`mbs=`/`gbs=` size
// hints do not affect it.
const DefaultPageSize = 1024

// DefaultRoot is the cache root Sugar applies absent a `root=` option.
const DefaultRoot = ".cachalot"

// Config is the per-call configuration record (spec's Config<P>). P is
// carried as a runtime field rather than a type parameter — the source's
// design notes call this out explicitly as the right fallback for
// languages without const generics — and is asserted immutable for the
// config's lifetime by never being mutated after NewConfig returns.
type Config[V any] struct {
	Root     string
	PageSize int

	// Logger receives diagnostic output; nil means discard, following
	// the ambient logging seam in internal/clog.
	Logger clog.Logger

	// Pool is the blocking-task executor backing all page I/O issued
	// under this config. nil means the shared process-wide pool
	// (blocking.Default()).
	Pool *blocking.Pool
}

// NewConfig validates that V is a plain-data type and fills in defaults
// for Root and PageSize (DefaultRoot, DefaultPageSize).
func NewConfig[V any](root string, pageSize int) (*Config[V], error) {
	if err := pagestore.CheckPlain[V](); err != nil {
		return nil, err
	}
	if root == "" {
		root = DefaultRoot
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Config[V]{Root: root, PageSize: pageSize}, nil
}

func (c *Config[V]) logger() clog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return clog.Discard
}

func (c *Config[V]) pool() *blocking.Pool {
	if c.Pool != nil {
		return c.Pool
	}
	return blocking.Default()
}

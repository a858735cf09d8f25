// Package pagestore implements PathStore: stateless helpers that turn a
// (cache directory, page number) pair into a file path and perform
// byte-level reads and writes of contiguous V arrays, off the caller's
// goroutine via an internal/blocking.Pool. Grounded on the file-handling
// half of tenant/dcache.Cache.mmap (the id/predir sharding and the
// create-temp-then-rename atomic-write idiom) generalized from a single
// mmap'd blob per entry to a plain page file per page, read with ReadAt
// and written whole.
package pagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/google/uuid"

	"github.com/lanz-project/cachalot/idxrange"
	"github.com/lanz-project/cachalot/internal/blocking"
)

// PagePath returns the file path for page n inside dir. The page number
// is rendered unpadded, base-10 (idxrange.Idx already renders this way).
func PagePath(dir string, n idxrange.Idx) string {
	return filepath.Join(dir, n.String())
}

func byteSizeOf[V any]() int {
	var zero V
	return int(unsafe.Sizeof(zero))
}

func bytesOf[V any](data []V) []byte {
	if len(data) == 0 {
		return nil
	}
	sz := byteSizeOf[V]()
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*sz)
}

func valuesOf[V any](buf []byte, n int) []V {
	out := make([]V, n)
	if n == 0 {
		return out
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), len(buf)), buf)
	return out
}

// Exists probes whether the page file at path is present. A permission
// or other non-NotExist error is reported to the caller, who treats it as
// environmental per the source's fatal-probe-error contract.
func Exists(ctx context.Context, pool *blocking.Pool, path string) (bool, error) {
	return blocking.Run(ctx, pool, func() (bool, error) {
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, wrap(KindPathAccess, path, err)
	})
}

// DirExists probes whether dir itself exists (used by StoreProtocol.load
// to pick between the empty-directory fast path and the mixed-span
// protocol).
func DirExists(ctx context.Context, pool *blocking.Pool, dir string) (bool, error) {
	return Exists(ctx, pool, dir)
}

// EnsureDir creates dir and any parents it is missing.
func EnsureDir(ctx context.Context, pool *blocking.Pool, dir string) error {
	_, err := blocking.Run(ctx, pool, func() (struct{}, error) {
		return struct{}{}, os.MkdirAll(dir, 0o755)
	})
	return err
}

// Read opens the page file at path and reads exactly slice.Len() values
// of V starting at byte offset slice.First*sizeof(V).
func Read[V any](ctx context.Context, pool *blocking.Pool, path string, slice idxrange.PageSlice) ([]V, error) {
	sz := byteSizeOf[V]()
	return blocking.Run(ctx, pool, func() ([]V, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, wrap(KindFileOpen, path, err)
		}
		defer f.Close()
		n := slice.Len()
		buf := make([]byte, n*sz)
		off := int64(slice.First * sz)
		if _, err := f.ReadAt(buf, off); err != nil {
			return nil, wrap(KindPageRead, path, err)
		}
		return valuesOf[V](buf, n), nil
	})
}

// WriteFull creates (or truncates) the page file at path and writes the
// whole byte image of data. It requires len(data)==p and returns an
// error otherwise; callers (cachalot.cachePages) are responsible for never
// calling WriteFull on a partial slice, since only full pages are ever
// persisted. The written file is exactly p*sizeof(V) bytes: no header,
// no checksum, no framing (spec §3, §6).
//
// The write stages into a uniquely-named temporary file before renaming
// it into place, generalizing the teacher's "id.tmp" convention (which
// assumes a single in-flight writer per id) to the page cache's explicit
// no-locking, last-writer-wins concurrent-write model: two loads racing
// to fill the same page each get their own temp file and either rename
// can win, since the content is a pure function of (type, sizeof, key,
// page) and is therefore identical either way.
func WriteFull[V any](ctx context.Context, pool *blocking.Pool, path string, p int, data []V) error {
	if len(data) != p {
		return fmt.Errorf("pagestore: WriteFull requires exactly %d elements, got %d", p, len(data))
	}
	tmp := path + "." + uuid.NewString() + ".tmp"
	body := bytesOf(data)
	_, err := blocking.Run(ctx, pool, func() (struct{}, error) {
		f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return struct{}{}, wrap(KindFileCreate, tmp, err)
		}
		if _, err := f.Write(body); err != nil {
			f.Close()
			os.Remove(tmp)
			return struct{}{}, wrap(KindPageWrite, tmp, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(tmp)
			return struct{}{}, wrap(KindPageWrite, tmp, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			os.Remove(tmp)
			return struct{}{}, wrap(KindPageWrite, tmp, err)
		}
		return struct{}{}, nil
	})
	return err
}

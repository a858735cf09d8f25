package pagestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lanz-project/cachalot/idxrange"
	"github.com/lanz-project/cachalot/internal/blocking"
)

func TestWriteFullThenRead(t *testing.T) {
	dir := t.TempDir()
	pool := blocking.NewPool(2)
	path := filepath.Join(dir, "0")

	data := make([]uint32, 8)
	for i := range data {
		data[i] = uint32(i * 7)
	}

	if err := WriteFull(context.Background(), pool, path, 8, data); err != nil {
		t.Fatalf("WriteFull: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() != int64(8*4) {
		t.Fatalf("page file size = %d, want %d", fi.Size(), 8*4)
	}

	got, err := Read[uint32](context.Background(), pool, path, idxrange.PageSlice{Page: idxrange.FromUint64(0), First: 2, Last: 5})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []uint32{14, 21, 28, 35}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d]=%d, want %d", i, got[i], want[i])
		}
	}
}

func TestWriteFullRejectsPartial(t *testing.T) {
	dir := t.TempDir()
	pool := blocking.NewPool(1)
	path := filepath.Join(dir, "0")
	err := WriteFull(context.Background(), pool, path, 8, make([]uint32, 3))
	if err == nil {
		t.Fatal("expected error writing a short buffer as a full page")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("partial write must not create a page file")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	pool := blocking.NewPool(1)
	path := filepath.Join(dir, "7")
	ok, err := Exists(context.Background(), pool, path)
	if err != nil || ok {
		t.Fatalf("Exists on missing file = (%v, %v), want (false, nil)", ok, err)
	}
	if err := WriteFull(context.Background(), pool, path, 1, []uint64{42}); err != nil {
		t.Fatalf("WriteFull: %v", err)
	}
	ok, err = Exists(context.Background(), pool, path)
	if err != nil || !ok {
		t.Fatalf("Exists after write = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestCheckPlainRejectsPointers(t *testing.T) {
	type withPointer struct {
		X *int
	}
	if err := CheckPlain[withPointer](); err == nil {
		t.Fatal("expected CheckPlain to reject a struct containing a pointer")
	}
	if err := CheckPlain[uint64](); err != nil {
		t.Fatalf("CheckPlain[uint64] = %v, want nil", err)
	}
	type ok struct {
		A uint32
		B [4]byte
	}
	if err := CheckPlain[ok](); err != nil {
		t.Fatalf("CheckPlain[ok] = %v, want nil", err)
	}
}

package region

import (
	"bytes"
	"testing"
)

func TestEngineWriteReadAcrossRegions(t *testing.T) {
	e, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	coords := [][2]int32{{0, 0}, {31, 31}, {32, 32}, {-1, -1}, {-33, 40}}
	for _, c := range coords {
		payload := []byte{byte(c[0]), byte(c[1]), 0xAA}
		if err := e.Write(c[0], c[1], payload); err != nil {
			t.Fatalf("Write(%d,%d): %v", c[0], c[1], err)
		}
	}
	for _, c := range coords {
		got, ok, err := e.Read(c[0], c[1])
		if err != nil || !ok {
			t.Fatalf("Read(%d,%d): ok=%v err=%v", c[0], c[1], ok, err)
		}
		want := []byte{byte(c[0]), byte(c[1]), 0xAA}
		if !bytes.Equal(got, want) {
			t.Fatalf("Read(%d,%d) = %v, want %v", c[0], c[1], got, want)
		}
	}
}

func TestEngineHasMissing(t *testing.T) {
	e, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	ok, err := e.Has(5, 5)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if ok {
		t.Fatal("expected Has to report false for a chunk never written")
	}

	if err := e.Write(5, 5, []byte("present")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	ok, err = e.Has(5, 5)
	if err != nil || !ok {
		t.Fatalf("Has after Write: ok=%v err=%v", ok, err)
	}
}

func TestEngineEvictsLeastRecentlyUsedHandle(t *testing.T) {
	e, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	// Each region is RegionSize chunks wide; use a distinct rx per iteration
	// so every Write opens a new region file handle.
	for i := int32(0); i < MaxOpenFiles+10; i++ {
		if err := e.Write(i*RegionSize, 0, []byte("v")); err != nil {
			t.Fatalf("Write region %d: %v", i, err)
		}
	}
	if got := e.OpenCount(); got != MaxOpenFiles {
		t.Fatalf("OpenCount() = %d, want %d", got, MaxOpenFiles)
	}

	// The very first region should have been evicted; reading it must
	// transparently reopen its file and still return the right data.
	got, ok, err := e.Read(0, 0)
	if err != nil || !ok {
		t.Fatalf("Read after eviction: ok=%v err=%v", ok, err)
	}
	if string(got) != "v" {
		t.Fatalf("Read after eviction = %q, want %q", got, "v")
	}
}

func TestEngineCloseReleasesAllHandles(t *testing.T) {
	e, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Write(0, 0, []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := e.OpenCount(); got != 1 {
		t.Fatalf("OpenCount() = %d, want 1", got)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := e.OpenCount(); got != 0 {
		t.Fatalf("OpenCount() after Close = %d, want 0", got)
	}
}

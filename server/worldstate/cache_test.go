package worldstate

import (
	"sync"
	"testing"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	c := NewCache()
	a := c.GetOrCreate(1, 2)
	b := c.GetOrCreate(1, 2)
	if a != b {
		t.Fatal("GetOrCreate should return the same chunk pointer for the same coordinates")
	}
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}
}

func TestPutAndGet(t *testing.T) {
	c := NewCache()
	chunk := NewChunk(10, 20)
	c.Put(chunk)

	got, ok := c.Get(10, 20)
	if !ok || got != chunk {
		t.Fatalf("Get(10,20) = (%v,%v), want (%v,true)", got, ok, chunk)
	}

	if _, ok := c.Get(11, 20); ok {
		t.Fatal("Get should miss on an unrelated coordinate")
	}
}

func TestRemove(t *testing.T) {
	c := NewCache()
	c.Put(NewChunk(0, 0))
	c.Remove(0, 0)
	if _, ok := c.Get(0, 0); ok {
		t.Fatal("expected Remove to delete the entry")
	}
}

func TestEvictOutsideChebyshevRadius(t *testing.T) {
	c := NewCache()
	for cx := int32(-2); cx <= 2; cx++ {
		for cy := int32(-2); cy <= 2; cy++ {
			c.Put(NewChunk(cx, cy))
		}
	}
	if c.Size() != 25 {
		t.Fatalf("Size() = %d, want 25", c.Size())
	}

	removed := c.EvictOutside(0, 0, 1)
	if removed != 16 {
		t.Fatalf("EvictOutside removed %d, want 16", removed)
	}
	if c.Size() != 9 {
		t.Fatalf("Size() after eviction = %d, want 9", c.Size())
	}
	if _, ok := c.Get(2, 2); ok {
		t.Fatal("chunk (2,2) should have been evicted")
	}
	if _, ok := c.Get(1, 1); !ok {
		t.Fatal("chunk (1,1) should have survived eviction")
	}
}

func TestTrimToSizeReducesToTarget(t *testing.T) {
	c := NewCache()
	for i := int32(0); i < 20; i++ {
		c.Put(NewChunk(i, 0))
	}

	removed := c.TrimToSize(12)
	if len(removed) != 8 {
		t.Fatalf("TrimToSize removed %d chunks, want 8", len(removed))
	}
	if c.Size() != 12 {
		t.Fatalf("Size() after trim = %d, want 12", c.Size())
	}
}

func TestTrimToSizeIsNoopWhenAlreadyUnderTarget(t *testing.T) {
	c := NewCache()
	c.Put(NewChunk(0, 0))
	c.Put(NewChunk(1, 0))

	removed := c.TrimToSize(10)
	if removed != nil {
		t.Fatalf("TrimToSize = %v, want nil when already under the target", removed)
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2 (untouched)", c.Size())
	}
}

func TestAllSnapshotsEveryShard(t *testing.T) {
	c := NewCache()
	const n = 200
	for i := int32(0); i < n; i++ {
		c.Put(NewChunk(i, i*7))
	}
	all := c.All()
	if len(all) != n {
		t.Fatalf("All() returned %d chunks, want %d", len(all), n)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int32) {
			defer wg.Done()
			c.GetOrCreate(i%8, i%5)
			c.Put(NewChunk(i, i))
			c.Get(i, i)
		}(int32(i))
	}
	wg.Wait()
}

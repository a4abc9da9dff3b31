package worldstate

import (
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
	"golang.org/x/exp/maps"
)

// cacheShards is the number of independent lock domains the cache is split
// across. Splitting the single concurrent map the design notes call for
// into shards keyed by a fast hash of the packed chunk key means a lookup
// for one chunk only contends with writes to chunks in the same shard.
const cacheShards = 32

// Cache is the in-memory chunk cache of §4.5: keyed by packed (cx,cy),
// safe for many concurrent readers and writers, and ignorant of
// persistence - it never touches disk itself.
type Cache struct {
	shards [cacheShards]shard
}

type shard struct {
	mu sync.RWMutex
	m  map[int64]*Chunk
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i].m = make(map[int64]*Chunk)
	}
	return c
}

func (c *Cache) shard(key int64) *shard {
	h := fnv1a.HashUint64(uint64(key))
	return &c.shards[h&(cacheShards-1)]
}

// GetOrCreate returns the existing entry for (cx,cy), or atomically inserts
// and returns a fresh, non-generated chunk.
func (c *Cache) GetOrCreate(cx, cy int32) *Chunk {
	key := Key(cx, cy)
	s := c.shard(key)

	s.mu.RLock()
	if ch, ok := s.m[key]; ok {
		s.mu.RUnlock()
		return ch
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.m[key]; ok {
		return ch
	}
	ch := NewChunk(cx, cy)
	s.m[key] = ch
	return ch
}

// Get returns the entry for (cx,cy), if any.
func (c *Cache) Get(cx, cy int32) (*Chunk, bool) {
	key := Key(cx, cy)
	s := c.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.m[key]
	return ch, ok
}

// Put inserts chunk, replacing any existing entry at its coordinates.
func (c *Cache) Put(chunk *Chunk) {
	key := Key(chunk.CX, chunk.CY)
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = chunk
}

// Remove deletes the entry at (cx,cy), if present.
func (c *Cache) Remove(cx, cy int32) {
	key := Key(cx, cy)
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// EvictOutside removes every entry whose Chebyshev distance from
// (centerCx,centerCy) exceeds radius, and returns the number removed.
func (c *Cache) EvictOutside(centerCx, centerCy, radius int32) int {
	removed := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for key, ch := range s.m {
			if chebyshev(ch.CX-centerCx, ch.CY-centerCy) > radius {
				delete(s.m, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

func chebyshev(dx, dy int32) int32 {
	dx = abs32(dx)
	dy = abs32(dy)
	if dx > dy {
		return dx
	}
	return dy
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Size returns the number of chunks currently cached.
func (c *Cache) Size() int {
	n := 0
	for i := range c.shards {
		c.shards[i].mu.RLock()
		n += len(c.shards[i].m)
		c.shards[i].mu.RUnlock()
	}
	return n
}

// TrimToSize removes entries until the cache holds at most maxSize chunks,
// returning the ones it removed so a caller can persist any that were
// generated before they are lost. It exists to enforce an advisory cache
// ceiling, not a specific replacement policy, so which entries it picks is
// unspecified and may vary between calls.
func (c *Cache) TrimToSize(maxSize int) []*Chunk {
	toRemove := c.Size() - maxSize
	if toRemove <= 0 {
		return nil
	}
	removed := make([]*Chunk, 0, toRemove)
	for i := range c.shards {
		if len(removed) >= toRemove {
			break
		}
		s := &c.shards[i]
		s.mu.Lock()
		for key, ch := range s.m {
			if len(removed) >= toRemove {
				break
			}
			delete(s.m, key)
			removed = append(removed, ch)
		}
		s.mu.Unlock()
	}
	return removed
}

// All returns a point-in-time snapshot of every cached chunk, safe to
// iterate without holding any cache lock. Callers such as saveAll must not
// assume the snapshot reflects chunks inserted after the call returns.
func (c *Cache) All() []*Chunk {
	out := make([]*Chunk, 0, c.Size())
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		out = append(out, maps.Values(s.m)...)
		s.mu.RUnlock()
	}
	return out
}

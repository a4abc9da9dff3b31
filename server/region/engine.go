package region

import (
	"container/list"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MaxOpenFiles is the size of the open-file LRU. The design notes flag the
// source's "close everything on overflow" policy as deliberately coarse
// and prescribe a true LRU as the intended behaviour; Engine implements
// that true LRU with touch-on-access eviction.
const MaxOpenFiles = 50

// Engine owns every open region file for one world. Operations on a given
// region are serialized by that region's own lock (inside *File); Engine's
// mutex only protects the handle table and LRU order.
type Engine struct {
	dir string

	mu      sync.Mutex
	handles map[int64]*list.Element // region key -> LRU element
	order   *list.List              // most-recently-used at the front
}

type entry struct {
	key int64
	rx  int32
	ry  int32
	f   *File
}

// New returns an Engine that stores region files under dir, creating dir if
// it does not already exist.
func New(dir string) (*Engine, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("region: create directory %s: %w", dir, err)
	}
	return &Engine{
		dir:     dir,
		handles: make(map[int64]*list.Element),
		order:   list.New(),
	}, nil
}

func regionKey(rx, ry int32) int64 {
	return int64(uint64(uint32(rx))<<32 | uint64(uint32(ry)))
}

// acquire returns the open *File for region (rx,ry), opening it and
// touching the LRU if necessary, evicting the least-recently-used handle
// first if the table is full.
func (e *Engine) acquire(rx, ry int32) (*File, error) {
	key := regionKey(rx, ry)

	e.mu.Lock()
	if el, ok := e.handles[key]; ok {
		e.order.MoveToFront(el)
		f := el.Value.(*entry).f
		e.mu.Unlock()
		return f, nil
	}
	e.mu.Unlock()

	path := filepath.Join(e.dir, fmt.Sprintf("r.%d.%d.bin", rx, ry))
	f, err := Open(path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if el, ok := e.handles[key]; ok {
		// Lost the race with another acquire; close our redundant handle.
		e.order.MoveToFront(el)
		existing := el.Value.(*entry).f
		f.Close()
		return existing, nil
	}
	if len(e.handles) >= MaxOpenFiles {
		e.evictOldestLocked()
	}
	el := e.order.PushFront(&entry{key: key, rx: rx, ry: ry, f: f})
	e.handles[key] = el
	return f, nil
}

// evictOldestLocked closes and drops the least-recently-used handle. The
// caller must hold e.mu.
func (e *Engine) evictOldestLocked() {
	back := e.order.Back()
	if back == nil {
		return
	}
	ent := back.Value.(*entry)
	e.order.Remove(back)
	delete(e.handles, ent.key)
	ent.f.Close()
}

// Has reports whether the chunk at (cx,cy) has a stored slot.
func (e *Engine) Has(cx, cy int32) (bool, error) {
	rx, ry := regionCoords(cx, cy)
	f, err := e.acquire(rx, ry)
	if err != nil {
		return false, err
	}
	lx, ly := localCoords(cx, cy)
	return f.Has(lx, ly), nil
}

// Read returns the stored bytes for chunk (cx,cy), or ok=false if absent.
func (e *Engine) Read(cx, cy int32) (data []byte, ok bool, err error) {
	rx, ry := regionCoords(cx, cy)
	f, err := e.acquire(rx, ry)
	if err != nil {
		return nil, false, err
	}
	lx, ly := localCoords(cx, cy)
	return f.Read(lx, ly)
}

// Write stores data for chunk (cx,cy).
func (e *Engine) Write(cx, cy int32, data []byte) error {
	rx, ry := regionCoords(cx, cy)
	f, err := e.acquire(rx, ry)
	if err != nil {
		return err
	}
	lx, ly := localCoords(cx, cy)
	return f.Write(lx, ly, data)
}

// Close flushes and releases every open region file.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var firstErr error
	for e.order.Len() > 0 {
		back := e.order.Back()
		ent := back.Value.(*entry)
		e.order.Remove(back)
		delete(e.handles, ent.key)
		if err := ent.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenCount returns the number of currently open region handles, exposed
// for tests.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handles)
}

func regionCoords(cx, cy int32) (rx, ry int32) {
	return floorDiv(cx, RegionSize), floorDiv(cy, RegionSize)
}

func localCoords(cx, cy int32) (lx, ly int32) {
	return floorMod(cx, RegionSize), floorMod(cy, RegionSize)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int32) int32 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

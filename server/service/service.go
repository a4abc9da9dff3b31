// Package service implements the chunk service of §4.7: the piece that
// resolves "get chunk (cx,cy)" as cache -> disk -> generator, persists
// newly generated chunks, and drives autosave.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sablefrost/terra/server/region"
	"github.com/sablefrost/terra/server/terrain"
	"github.com/sablefrost/terra/server/worldstate"
)

// Service ties the in-memory cache, the region storage engine and the
// terrain pipeline together. It is the only component that knows about all
// three; the wire server talks to a Service and never reaches past it.
type Service struct {
	log *slog.Logger

	cache    *worldstate.Cache
	engine   *region.Engine
	pipeline *terrain.Pipeline

	// maxCachedChunks is the advisory cache ceiling of §6's
	// memory.server_max_chunks. Zero or negative disables enforcement.
	maxCachedChunks int
}

// New returns a Service backed by cache, engine and pipeline. maxCachedChunks
// is the advisory ceiling AutoLoop enforces on the cache's size; pass 0 to
// leave the cache unbounded.
func New(log *slog.Logger, cache *worldstate.Cache, engine *region.Engine, pipeline *terrain.Pipeline, maxCachedChunks int) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, cache: cache, engine: engine, pipeline: pipeline, maxCachedChunks: maxCachedChunks}
}

// Seed returns the world seed the Service's terrain pipeline was built
// with - the value sent to clients on LOGIN_OK.
func (s *Service) Seed() int64 { return s.pipeline.Seed() }

// GetChunk resolves chunk (cx,cy) as cache -> disk -> generator, in that
// order, persisting it on first generation. A storage read/write failure
// is logged and treated as a miss/best-effort respectively; it is never
// fatal to the request.
func (s *Service) GetChunk(cx, cy int32) (*worldstate.Chunk, error) {
	if ch, ok := s.cache.Get(cx, cy); ok && ch.Generated {
		return ch, nil
	}

	data, ok, err := s.engine.Read(cx, cy)
	if err != nil {
		s.log.Error("region read failed, falling back to generation", "cx", cx, "cy", cy, "err", err)
	}
	if ok {
		ch, err := worldstate.Decode(data)
		if err != nil {
			s.log.Warn("discarding corrupt chunk frame, regenerating", "cx", cx, "cy", cy, "err", err)
		} else {
			s.cache.Put(ch)
			return ch, nil
		}
	}

	ch := s.cache.GetOrCreate(cx, cy)
	terrain.Generate(s.pipeline, ch)
	s.cache.Put(ch)

	if err := s.persist(ch); err != nil {
		s.log.Error("failed to persist freshly generated chunk", "cx", cx, "cy", cy, "err", err)
	}
	return ch, nil
}

func (s *Service) persist(ch *worldstate.Chunk) error {
	data, err := worldstate.Encode(ch)
	if err != nil {
		return fmt.Errorf("encode chunk (%d,%d): %w", ch.CX, ch.CY, err)
	}
	if err := s.engine.Write(ch.CX, ch.CY, data); err != nil {
		return fmt.Errorf("write chunk (%d,%d): %w", ch.CX, ch.CY, err)
	}
	return nil
}

// SaveAll encodes and writes every generated chunk currently cached. It
// takes a point-in-time snapshot of the cache, so a chunk generated
// concurrently may be written twice in close succession - harmless, since
// writes are idempotent for a given payload.
func (s *Service) SaveAll() int {
	saved := 0
	for _, ch := range s.cache.All() {
		if !ch.Generated {
			continue
		}
		if err := s.persist(ch); err != nil {
			s.log.Error("autosave: failed to persist chunk", "cx", ch.CX, "cy", ch.CY, "err", err)
			continue
		}
		saved++
	}
	return saved
}

// AutoLoop runs SaveAll every interval until ctx is cancelled, logging the
// count each time. It is meant to be started once, alongside the server,
// and stopped on shutdown by cancelling ctx.
func (s *Service) AutoLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.SaveAll()
			s.log.Info("autosave complete", "chunks", n)
			if trimmed := s.EnforceCacheCeiling(); trimmed > 0 {
				s.log.Info("cache ceiling enforced", "evicted", trimmed)
			}
		}
	}
}

// SpawnWarmup requests every chunk in [-radius,+radius]^2 around (0,0),
// populating the world root deterministically before the server starts
// accepting connections.
func (s *Service) SpawnWarmup(radius int32) {
	for cx := -radius; cx <= radius; cx++ {
		for cy := -radius; cy <= radius; cy++ {
			if _, err := s.GetChunk(cx, cy); err != nil {
				s.log.Error("spawn warmup failed", "cx", cx, "cy", cy, "err", err)
			}
		}
	}
	s.log.Info("spawn area generated", "chunks", (2*radius+1)*(2*radius+1))
}

// EvictOutside forces the cache to drop every chunk outside the given
// Chebyshev radius of (centerCx,centerCy), used by the wire server's
// memory watchdog.
func (s *Service) EvictOutside(centerCx, centerCy, radius int32) int {
	return s.cache.EvictOutside(centerCx, centerCy, radius)
}

// CachedChunks returns the number of chunks currently held in the cache.
func (s *Service) CachedChunks() int { return s.cache.Size() }

// EnforceCacheCeiling trims the cache down to maxCachedChunks if it is
// currently over that advisory limit, persisting any generated chunk it
// evicts so the trim never loses data. It returns the number of chunks
// removed; a non-positive maxCachedChunks disables enforcement entirely.
func (s *Service) EnforceCacheCeiling() int {
	if s.maxCachedChunks <= 0 {
		return 0
	}
	evicted := s.cache.TrimToSize(s.maxCachedChunks)
	for _, ch := range evicted {
		if !ch.Generated {
			continue
		}
		if err := s.persist(ch); err != nil {
			s.log.Error("cache ceiling: failed to persist evicted chunk", "cx", ch.CX, "cy", ch.CY, "err", err)
		}
	}
	return len(evicted)
}

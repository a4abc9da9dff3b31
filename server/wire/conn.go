package wire

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/sablefrost/terra/server/service"
	"github.com/sablefrost/terra/server/worldstate"
)

// chunkWorkers is the size of the bounded per-connection pool that
// encodes and sends chunk responses, per §4.8.
const chunkWorkers = 4

// drainTimeout bounds how long close waits for in-flight chunk jobs before
// giving up and returning anyway.
const drainTimeout = 10 * time.Second

type connState int32

const (
	stateAwaitingLogin connState = iota
	stateActive
	stateClosed
)

// Conn is the per-connection handler of §4.8: it owns the connection's
// state machine, its rate limit counters, its output lock, and its
// bounded chunk-worker pool.
type Conn struct {
	id   uuid.UUID
	log  *slog.Logger
	nc   net.Conn
	svc  *service.Service
	conf Config

	state atomic.Int32

	outMu sync.Mutex // serializes every write to nc

	sem *semaphore.Weighted
	wg  sync.WaitGroup

	rateMu           sync.Mutex
	rateSecond       int64
	requestsInSecond int
}

// Config carries the policy knobs a Conn enforces: rate limiting,
// coordinate bounds, and the memory watchdog threshold.
type Config struct {
	MaxRequestsPerSecond int
	MaxCoordinate        int32
	EmergencyThreshold   float64
}

func newConn(nc net.Conn, log *slog.Logger, svc *service.Service, conf Config) *Conn {
	c := &Conn{
		id:   uuid.New(),
		log:  log,
		nc:   nc,
		svc:  svc,
		conf: conf,
		sem:  semaphore.NewWeighted(chunkWorkers),
	}
	c.state.Store(int32(stateAwaitingLogin))
	return c
}

// serve runs the connection's read loop until the peer disconnects, a
// protocol violation occurs, or the socket errors. It never returns an
// error: every fault is logged and treated as a reason to close.
func (c *Conn) serve() {
	log := c.log.With("conn", c.id.String())
	defer c.close(log)

	for {
		cmd, err := readString(c.nc)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("connection read failed", "err", err)
			}
			return
		}

		state := connState(c.state.Load())
		if state == stateAwaitingLogin && cmd != CmdLogin {
			log.Debug("protocol violation: expected LOGIN", "got", cmd)
			return
		}

		switch cmd {
		case CmdLogin:
			if err := c.handleLogin(); err != nil {
				log.Debug("failed to write LOGIN_OK", "err", err)
				return
			}
			c.state.Store(int32(stateActive))
		case CmdGetChunk:
			req, err := readGetChunkRequest(c.nc)
			if err != nil {
				log.Debug("failed to read GET_CHUNK payload", "err", err)
				return
			}
			c.handleGetChunk(log, req)
		case CmdGetStats:
			if err := c.handleGetStats(); err != nil {
				log.Debug("failed to write STATS_DATA", "err", err)
				return
			}
		case CmdDisconnect:
			return
		default:
			log.Debug("unknown command", "cmd", cmd)
			return
		}
	}
}

func (c *Conn) handleLogin() error {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return writeLoginOK(c.nc, c.svc.Seed())
}

func (c *Conn) handleGetStats() error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	reply := StatsReply{
		UsedMemBytes:  int64(ms.Alloc),
		TotalMemBytes: int64(ms.Sys),
		ActiveThreads: int32(runtime.NumGoroutine()),
		LoadedChunks:  int32(c.svc.CachedChunks()),
	}
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return writeStatsData(c.nc, reply)
}

// handleGetChunk applies the rate limit and coordinate-bounds quota checks
// inline (dropping the request silently on violation), runs the memory
// watchdog, and dispatches the actual fetch-and-respond work to the
// bounded worker pool.
func (c *Conn) handleGetChunk(log *slog.Logger, req GetChunkRequest) {
	if !c.allowRequest() {
		return
	}
	if abs32(req.CX) > c.conf.MaxCoordinate || abs32(req.CY) > c.conf.MaxCoordinate {
		log.Debug("dropping out-of-bounds GET_CHUNK", "cx", req.CX, "cy", req.CY)
		return
	}

	c.checkMemoryWatchdog(log)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer c.sem.Release(1)
		c.respondToChunkRequest(log, req)
	}()
}

func (c *Conn) respondToChunkRequest(log *slog.Logger, req GetChunkRequest) {
	if connState(c.state.Load()) == stateClosed {
		return
	}
	chunk, err := c.svc.GetChunk(req.CX, req.CY)
	if err != nil {
		log.Error("chunk service failed", "cx", req.CX, "cy", req.CY, "err", err)
		return
	}

	c.outMu.Lock()
	defer c.outMu.Unlock()
	if connState(c.state.Load()) == stateClosed {
		return
	}

	var writeErr error
	if !chunk.Modified {
		writeErr = writeChunkProcedural(c.nc, req.CX, req.CY)
	} else {
		data, encErr := worldstate.Encode(chunk)
		if encErr != nil {
			log.Error("failed to encode chunk", "cx", req.CX, "cy", req.CY, "err", encErr)
			return
		}
		writeErr = writeChunkData(c.nc, data)
	}
	if writeErr != nil {
		log.Debug("dropping chunk response after write failure", "cx", req.CX, "cy", req.CY, "err", writeErr)
		c.state.Store(int32(stateClosed))
	}
}

// allowRequest enforces the per-second GET_CHUNK quota.
func (c *Conn) allowRequest() bool {
	now := time.Now().Unix()
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	if now != c.rateSecond {
		c.rateSecond = now
		c.requestsInSecond = 0
	}
	c.requestsInSecond++
	return c.requestsInSecond <= c.conf.MaxRequestsPerSecond
}

// checkMemoryWatchdog evicts distant chunks and hints the runtime to
// reclaim memory if the process's used/total ratio exceeds the configured
// emergency threshold.
func (c *Conn) checkMemoryWatchdog(log *slog.Logger) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.Sys == 0 {
		return
	}
	ratio := float64(ms.Alloc) / float64(ms.Sys)
	if ratio <= c.conf.EmergencyThreshold {
		return
	}
	removed := c.svc.EvictOutside(0, 0, 100)
	log.Warn("emergency eviction triggered", "ratio", ratio, "evicted", removed)
	runtime.GC()
}

// close tears the connection down: it marks the state Closed so in-flight
// jobs stop writing, waits up to drainTimeout for the worker pool to
// drain, then closes the socket regardless.
func (c *Conn) close(log *slog.Logger) {
	c.state.Store(int32(stateClosed))

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		log.Warn("forcibly closing connection after drain timeout")
	}

	if err := c.nc.Close(); err != nil {
		log.Debug("error closing connection", "err", err)
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

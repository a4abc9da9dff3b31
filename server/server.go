// Package server wires together the terrain pipeline, the region storage
// engine, the chunk cache and the wire protocol server into a single
// runnable world server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sablefrost/terra/server/region"
	"github.com/sablefrost/terra/server/service"
	"github.com/sablefrost/terra/server/terrain"
	"github.com/sablefrost/terra/server/wire"
	"github.com/sablefrost/terra/server/worldstate"
)

// Config is the runtime record a Server is built from, derived from a
// UserConfig by ConfigFromUserConfig. Unlike UserConfig it is immutable once built
// and carries live objects (a logger) rather than serializable values.
type Config struct {
	Log *slog.Logger

	Addr                 string
	WorldDir             string
	WorldName            string
	Seed                 int64
	MaxRequestsPerSecond int
	MaxCoordinate        int32
	EmergencyThreshold   float64
	AutosaveInterval     time.Duration
	SpawnWarmupRadius    int32
	MaxCachedChunks      int
}

// ConfigFromUserConfig derives a Config from uc, resolving the world
// seed against the persisted worlds/<name>/world.toml sidecar (§7): on a
// seed mismatch between uc and a previously created world, the persisted
// seed wins.
func ConfigFromUserConfig(log *slog.Logger, uc UserConfig) (Config, error) {
	if log == nil {
		log = slog.Default()
	}
	worldDir := filepath.Join("worlds", uc.WorldName)
	seed, err := loadOrCreateWorldMeta(log, worldDir, uc.WorldName, uc.WorldSeed, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return Config{}, fmt.Errorf("server: resolve world metadata: %w", err)
	}
	return Config{
		Log:                  log,
		Addr:                 fmt.Sprintf(":%d", uc.Port),
		WorldDir:             worldDir,
		WorldName:            uc.WorldName,
		Seed:                 seed,
		MaxRequestsPerSecond: uc.MaxRequestsPerSecond,
		MaxCoordinate:        uc.MaxCoordinate,
		EmergencyThreshold:   uc.EmergencyThreshold,
		AutosaveInterval:     time.Duration(uc.AutosaveIntervalSeconds) * time.Second,
		SpawnWarmupRadius:    2,
		MaxCachedChunks:      uc.ServerMaxChunks,
	}, nil
}

// Server is a fully wired world server: a chunk service backed by a cache,
// a region storage engine and a terrain pipeline, fronted by a wire.Server.
type Server struct {
	conf Config
	log  *slog.Logger

	engine *region.Engine
	svc    *service.Service
	wire   *wire.Server

	cancelAuto context.CancelFunc
}

// New builds a Server from conf. It opens the region storage engine under
// conf.WorldDir and generates the spawn area before returning, so New may
// block for the duration of spawn warmup.
func New(conf Config) (*Server, error) {
	log := conf.Log
	if log == nil {
		log = slog.Default()
	}

	engine, err := region.New(filepath.Join(conf.WorldDir, "regions"))
	if err != nil {
		return nil, fmt.Errorf("server: open region engine: %w", err)
	}

	cache := worldstate.NewCache()
	pipeline := terrain.New(conf.Seed)
	svc := service.New(log.With("component", "service"), cache, engine, pipeline, conf.MaxCachedChunks)

	wireConf := wire.Config{
		MaxRequestsPerSecond: conf.MaxRequestsPerSecond,
		MaxCoordinate:        conf.MaxCoordinate,
		EmergencyThreshold:   conf.EmergencyThreshold,
	}
	wireSrv := wire.New(log.With("component", "wire"), svc, wireConf, conf.Addr)

	s := &Server{conf: conf, log: log, engine: engine, svc: svc, wire: wireSrv}

	if conf.SpawnWarmupRadius > 0 {
		svc.SpawnWarmup(conf.SpawnWarmupRadius)
	}
	return s, nil
}

// Service returns the Server's chunk service, for use by the admin console.
func (s *Server) Service() *service.Service { return s.svc }

// Run starts the autosave loop and the wire server's accept loop. It blocks
// until ctx is cancelled, then saves every chunk and closes the region
// engine before returning.
func (s *Server) Run(ctx context.Context) error {
	autoCtx, cancelAuto := context.WithCancel(ctx)
	s.cancelAuto = cancelAuto
	go s.svc.AutoLoop(autoCtx, s.conf.AutosaveInterval)

	err := s.wire.Serve(ctx)

	cancelAuto()
	n := s.svc.SaveAll()
	s.log.Info("final save complete", "chunks", n)
	if closeErr := s.engine.Close(); closeErr != nil {
		s.log.Error("failed to close region engine", "err", closeErr)
	}
	return err
}

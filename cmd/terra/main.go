// Command terra runs a chunked-world server: a deterministic terrain
// generator, a region-file storage engine, and a TCP chunk-serving
// protocol, all driven by a single server.properties file.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sablefrost/terra/server"
	"github.com/sablefrost/terra/server/console"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	configPath := "server.properties"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	userConf, err := server.LoadUserConfig(configPath)
	if err != nil {
		log.Error("failed to load configuration", "path", configPath, "err", err)
		os.Exit(1)
	}

	conf, err := server.ConfigFromUserConfig(log, userConf)
	if err != nil {
		log.Error("failed to resolve server configuration", "err", err)
		os.Exit(1)
	}

	srv, err := server.New(conf)
	if err != nil {
		log.Error("failed to start server", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	con := console.New(srv.Service(), log.With("component", "console"), stop)
	go con.Run(ctx)

	log.Info("server starting", "addr", conf.Addr, "world", conf.WorldName, "seed", conf.Seed)
	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped cleanly")
}

package server

import (
	"context"
	"testing"
	"time"
)

func TestConfigFromUserConfigResolvesWorldDirAndSeed(t *testing.T) {
	t.Chdir(t.TempDir())

	uc := DefaultUserConfig()
	uc.WorldName = "overworld"
	uc.WorldSeed = 4242

	conf, err := ConfigFromUserConfig(discardLogger(), uc)
	if err != nil {
		t.Fatalf("ConfigFromUserConfig: %v", err)
	}
	if conf.Seed != 4242 {
		t.Fatalf("Seed = %d, want 4242", conf.Seed)
	}
	if conf.WorldName != "overworld" {
		t.Fatalf("WorldName = %q, want %q", conf.WorldName, "overworld")
	}
	if conf.SpawnWarmupRadius != 2 {
		t.Fatalf("SpawnWarmupRadius = %d, want 2", conf.SpawnWarmupRadius)
	}

	// A second resolution with a different configured seed must keep the
	// seed persisted by the first.
	uc.WorldSeed = 1
	again, err := ConfigFromUserConfig(discardLogger(), uc)
	if err != nil {
		t.Fatalf("ConfigFromUserConfig (second): %v", err)
	}
	if again.Seed != 4242 {
		t.Fatalf("Seed on second resolution = %d, want persisted seed 4242", again.Seed)
	}
}

func TestNewAndRunWireChunkServiceAndShutDownCleanly(t *testing.T) {
	conf := Config{
		Log:                  discardLogger(),
		Addr:                 "127.0.0.1:0",
		WorldDir:             t.TempDir(),
		WorldName:            "test",
		Seed:                 1,
		MaxRequestsPerSecond: 100,
		MaxCoordinate:        1000,
		EmergencyThreshold:   0.99,
		AutosaveInterval:     0,
		SpawnWarmupRadius:    1,
	}

	srv, err := New(conf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if srv.Service().CachedChunks() != 9 {
		t.Fatalf("CachedChunks() after warmup = %d, want 9", srv.Service().CachedChunks())
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErrCh := make(chan error, 1)
	go func() { runErrCh <- srv.Run(ctx) }()

	// Give the accept loop a moment to start, then shut down.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-runErrCh:
		if err != nil {
			t.Fatalf("Run returned error after shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// worldMeta is the sidecar persisted at worlds/<name>/world.toml. It exists
// so that restarting a server against an existing world with a different
// seed in server.properties cannot silently regenerate different terrain
// under the same chunk coordinates: the file, once written, is
// authoritative.
type worldMeta struct {
	Name      string `toml:"name"`
	Seed      int64  `toml:"seed"`
	CreatedAt string `toml:"created_at"`
}

// loadOrCreateWorldMeta reads worlds/<name>/world.toml, creating it with
// the given name/seed/createdAt if absent. If the file already exists and
// its seed disagrees with seed, the persisted seed wins and the mismatch
// is logged as a warning - resolving the otherwise-unspecified case of
// restarting a world with a different configured seed.
func loadOrCreateWorldMeta(log *slog.Logger, worldDir, name string, seed int64, createdAt string) (int64, error) {
	path := filepath.Join(worldDir, "world.toml")

	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		meta := worldMeta{Name: name, Seed: seed, CreatedAt: createdAt}
		if err := writeWorldMeta(path, meta); err != nil {
			return 0, err
		}
		return seed, nil
	}
	if err != nil {
		return 0, fmt.Errorf("server: read world metadata %s: %w", path, err)
	}

	var meta worldMeta
	if err := toml.Unmarshal(contents, &meta); err != nil {
		return 0, fmt.Errorf("server: decode world metadata %s: %w", path, err)
	}
	if meta.Seed != seed {
		log.Warn("configured world seed differs from persisted world, keeping the persisted seed",
			"configured", seed, "persisted", meta.Seed, "world", name)
	}
	return meta.Seed, nil
}

func writeWorldMeta(path string, meta worldMeta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("server: create world directory: %w", err)
	}
	encoded, err := toml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("server: encode world metadata: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("server: write world metadata %s: %w", path, err)
	}
	return nil
}

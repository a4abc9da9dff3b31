package server

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// UserConfig mirrors the key/value text file of §6, one field per
// recognized key. Missing keys adopt the defaults baked into
// DefaultUserConfig; unrecognized keys are ignored. An existing file is
// only read, never rewritten, so extra comments or keys in it stay as
// they are on disk.
type UserConfig struct {
	Port                    int
	MaxRequestsPerSecond    int
	WorldName               string
	WorldSeed               int64
	MaxCoordinate           int32
	ServerMaxChunks         int
	EmergencyThreshold      float64
	AutosaveIntervalSeconds int
}

// DefaultUserConfig returns the configuration defaults used when a key is
// absent from the file, or when the file itself does not exist yet.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		Port:                    25565,
		MaxRequestsPerSecond:    10000,
		WorldName:               "world",
		WorldSeed:               123456,
		MaxCoordinate:           100000,
		ServerMaxChunks:         10000,
		EmergencyThreshold:      0.9,
		AutosaveIntervalSeconds: 30,
	}
}

// LoadUserConfig reads the key/value config file at path. If the file does
// not exist, it is created with DefaultUserConfig's values and those
// defaults are returned.
func LoadUserConfig(path string) (UserConfig, error) {
	conf := DefaultUserConfig()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if writeErr := writeDefaultUserConfig(path, conf); writeErr != nil {
			return conf, writeErr
		}
		return conf, nil
	}
	if err != nil {
		return conf, fmt.Errorf("server: open config %s: %w", path, err)
	}
	defer f.Close()

	raw, err := parseProperties(f)
	if err != nil {
		return conf, fmt.Errorf("server: parse config %s: %w", path, err)
	}
	applyProperties(&conf, raw)
	return conf, nil
}

// parseProperties reads a minimal Java-properties-style key=value text
// format: one "key = value" pair per line, '#' and '!' introduce
// comments, blank lines are skipped. There is no ecosystem library for
// this exact text format in the retrieval pack's dependency set, so it is
// hand-rolled rather than pulled in as a third-party dependency.
func parseProperties(f *os.File) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		idx := strings.IndexAny(line, "=:")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		out[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func applyProperties(conf *UserConfig, raw map[string]string) {
	if v, ok := raw["server.port"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			conf.Port = n
		}
	}
	if v, ok := raw["server.max_requests_per_second"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			conf.MaxRequestsPerSecond = n
		}
	}
	if v, ok := raw["world.name"]; ok && v != "" {
		conf.WorldName = v
	}
	if v, ok := raw["world.seed"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			conf.WorldSeed = n
		}
	}
	if v, ok := raw["world.max_coordinate"]; ok {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			conf.MaxCoordinate = int32(n)
		}
	}
	if v, ok := raw["memory.server_max_chunks"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			conf.ServerMaxChunks = n
		}
	}
	if v, ok := raw["memory.emergency_threshold"]; ok {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			conf.EmergencyThreshold = n
		}
	}
	if v, ok := raw["persistence.autosave_interval_seconds"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			conf.AutosaveIntervalSeconds = n
		}
	}
}

func writeDefaultUserConfig(path string, conf UserConfig) error {
	var b strings.Builder
	b.WriteString("# terra server configuration - generated defaults\n")
	fmt.Fprintf(&b, "server.port=%d\n", conf.Port)
	fmt.Fprintf(&b, "server.max_requests_per_second=%d\n", conf.MaxRequestsPerSecond)
	fmt.Fprintf(&b, "world.name=%s\n", conf.WorldName)
	fmt.Fprintf(&b, "world.seed=%d\n", conf.WorldSeed)
	fmt.Fprintf(&b, "world.max_coordinate=%d\n", conf.MaxCoordinate)
	fmt.Fprintf(&b, "memory.server_max_chunks=%d\n", conf.ServerMaxChunks)
	fmt.Fprintf(&b, "memory.emergency_threshold=%v\n", conf.EmergencyThreshold)
	fmt.Fprintf(&b, "persistence.autosave_interval_seconds=%d\n", conf.AutosaveIntervalSeconds)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("server: write default config %s: %w", path, err)
	}
	return nil
}

// Package config reads and writes the optional TOML settings file and feeds
// it to kong so that file values sit between flags and built-in defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitlit/internal/constants"
)

// Config mirrors the global command line flags. Empty fields fall through to
// the flag defaults.
type Config struct {
	DB         string `toml:"db"`
	Timezone   string `toml:"timezone"`
	Debug      bool   `toml:"debug"`
	LogDir     string `toml:"log_dir"`
	AutoBackup bool   `toml:"auto_backup"`
}

var knownKeys = map[string]bool{
	"db":          true,
	"timezone":    true,
	"debug":       true,
	"log_dir":     true,
	"auto_backup": true,
}

// Default returns the settings a fresh install starts with.
func Default() *Config {
	return &Config{
		DB:         constants.DefaultDBPath,
		Timezone:   "Local",
		LogDir:     constants.DefaultConfigDir,
		AutoBackup: true,
	}
}

func Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(kong.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Init writes cfg to path. An existing file is only replaced when force is set.
func Init(path string, cfg *Config, force bool) error {
	path = kong.ExpandPath(path)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Loader is a kong.ConfigurationLoader for TOML files. Only keys present in
// the file are resolved; flag names map to keys by swapping '-' for '_'.
func Loader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	for key := range values {
		if !knownKeys[key] {
			return nil, fmt.Errorf("unknown config key %q", key)
		}
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		v, ok := values[strings.ReplaceAll(flag.Name, "-", "_")]
		if !ok {
			return nil, nil
		}
		return v, nil
	}), nil
}

// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// DirName is the per-project state directory
const DirName = ".stubgen"

// FileName is the config file inside DirName
const FileName = "config.toml"

// Config is the root configuration structure.
type Config struct {
	Generate GenerateConfig `toml:"generate"`
	Watch    WatchConfig    `toml:"watch"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
}

// GenerateConfig holds stub rendering settings.
type GenerateConfig struct {
	// LegacyParams skips functions whose parameter list contains a comma
	// and joins parameters without a separator.
	LegacyParams bool `toml:"legacy_params"`
}

// WatchConfig holds watcher settings.
type WatchConfig struct {
	Interval   Duration `toml:"interval"`
	Extensions []string `toml:"extensions"`
	SkipDirs   []string `toml:"skip_dirs"`
}

// CacheConfig holds the emitted-stub cache size.
type CacheConfig struct {
	Size int `toml:"size"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	// File receives watcher events as JSON lines, relative to DirName.
	File string `toml:"file"`
}

// Duration lets TOML carry values like "2s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			Interval:   Duration{2 * time.Second},
			Extensions: []string{".c", ".cpp"},
			SkipDirs:   []string{".git", DirName, "build", "vendor", "node_modules"},
		},
		Cache: CacheConfig{Size: 256},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join("cache", "worker.log"),
		},
	}
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.Watch.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("watch.interval=%s must be positive", c.Watch.Interval.Duration))
	}
	if len(c.Watch.Extensions) == 0 {
		errs = append(errs, errors.New("watch.extensions: at least one extension is required"))
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("watch.extensions: %q must start with a dot", ext))
		}
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, fmt.Errorf("cache.size=%d must be positive", c.Cache.Size))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level=%q is invalid: %v", c.Log.Level, err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"STUBGEN_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
		{"STUBGEN_WATCH_INTERVAL", func(v string) {
			if d, err := time.ParseDuration(v); err == nil {
				cfg.Watch.Interval = Duration{d}
			}
		}},
		{"STUBGEN_LEGACY_PARAMS", func(v string) {
			if b, err := strconv.ParseBool(v); err == nil {
				cfg.Generate.LegacyParams = b
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// Save writes cfg as TOML to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// FindDir walks up from start looking for DirName.
func FindDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialized
		}
		dir = parent
	}
}

// ErrNotInitialized is returned when no DirName exists up the tree.
var ErrNotInitialized = errors.New("stubgen is not initialized (no " + DirName + " directory found)")

// Package config loads the bookthickness TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/bookthickness/config.toml (falling back
// to ~/.config) unless a path is given explicitly. Every field is optional;
// missing fields keep the values of [Default]. Command-line flags override
// the file.
//
//	[search]
//	start_pages = 1
//	workers = 4
//	engine = "search"
//	timeout = "5m"
//
//	[cache]
//	backend = "badger"
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
//
//	[log]
//	level = "debug"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/cache"
	"github.com/matzehuels/bookthickness/pkg/errors"
)

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete configuration.
type Config struct {
	Search SearchConfig `toml:"search"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// SearchConfig holds solver defaults.
type SearchConfig struct {
	StartPages  int      `toml:"start_pages"`
	MaxPages    int      `toml:"max_pages"`
	Workers     int      `toml:"workers"`
	MaxFrontier int      `toml:"max_frontier"`
	Engine      string   `toml:"engine"`
	Timeout     Duration `toml:"timeout"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	URL     string   `toml:"url"`
	Prefix  string   `toml:"prefix"`
	TTL     Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxVertices    int      `toml:"max_vertices"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{
			StartPages: 1,
			Workers:    1,
			Engine:     string(book.EngineSearch),
		},
		Cache: CacheConfig{
			Backend: string(cache.BackendFile),
			TTL:     Duration{30 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: Duration{time.Minute},
			MaxVertices:    12,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "bookthickness", "config.toml"), nil
}

// Load reads the config at path on top of Default. An empty path reads the
// default location and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	s := c.Search
	if s.StartPages < 0 || s.MaxPages < 0 || s.Workers < 0 || s.MaxFrontier < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "search: numeric settings must not be negative")
	}
	if _, err := book.ParseEngine(s.Engine); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "search.engine")
	}
	switch cache.Backend(c.Cache.Backend) {
	case cache.BackendFile, cache.BackendBadger, cache.BackendNone, "":
	case cache.BackendRedis:
		if c.Cache.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q is not one of file, badger, redis, none", c.Cache.Backend)
	}
	if c.Log.Level != "" && !slices.Contains(logLevels, c.Log.Level) {
		return errors.New(errors.ErrCodeInvalidConfig, "log.level %q is not one of %s", c.Log.Level, strings.Join(logLevels, ", "))
	}
	return nil
}

// Write encodes c as TOML to path, creating parent directories.
func Write(c Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// Package config loads relayout tool settings.
//
// Settings live in a TOML file, by default $XDG_CONFIG_HOME/relayout/relayout.toml:
//
//	max_apply_attempts = 4
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[log]
//	level = "debug"
//
//	[server]
//	addr = ":8080"
//	layout_dir = "./layouts"
//
// A missing default file yields [Default]. A missing file named explicitly
// is an error.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/relayout/pkg/errors"
)

// FileName is the settings file name inside the config directory.
const FileName = "relayout.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config holds tool settings.
type Config struct {
	MaxApplyAttempts int          `toml:"max_apply_attempts"`
	Cache            CacheConfig  `toml:"cache"`
	Log              LogConfig    `toml:"log"`
	Server           ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	RedisURL string        `toml:"redis_url"`
	MongoURI string        `toml:"mongo_uri"`
	TTL      time.Duration `toml:"ttl"`
}

// LogConfig sets the default log level. --verbose overrides it.
type LogConfig struct {
	Level string `toml:"level"`
}

// ServerConfig configures `relayout serve`.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	LayoutDir string `toml:"layout_dir"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxApplyAttempts: 4,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     24 * time.Hour,
		},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Dir returns the config directory using XDG standard (~/.config/relayout/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "relayout"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "relayout"), nil
}

// Load reads settings from path, or from the default location when path is
// empty. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, FileName)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config %s not found", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML settings over cfg and validates the result.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse settings")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown setting %q", undecoded[0].String())
	}
	return cfg.Validate()
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.MaxApplyAttempts < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "max_apply_attempts must be at least 1, got %d", c.MaxApplyAttempts)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl cannot be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level. An empty level is Info.
func (c Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, errors.Wrap(errors.ErrCodeInvalidInput, err, "log.level")
	}
	return lvl, nil
}

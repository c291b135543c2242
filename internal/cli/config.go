package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/eclipseo/godepsdev/pkg/depsdev"
)

// Cache backends selectable in the config file.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config holds CLI settings loaded from a TOML file. Durations are given
// in seconds to keep the file format simple.
type Config struct {
	TimeoutSeconds float64     `toml:"timeout"`
	MaxRetries     int         `toml:"max_retries"`
	BaseBackoff    float64     `toml:"base_backoff"`
	MaxBackoff     float64     `toml:"max_backoff"`
	Cache          CacheConfig `toml:"cache"`
}

// CacheConfig selects and configures the response cache backend.
type CacheConfig struct {
	Backend    string  `toml:"backend"` // file, redis or none
	Dir        string  `toml:"dir"`
	TTLSeconds float64 `toml:"ttl"` // 0 caches without expiry
	RedisAddr  string  `toml:"redis_addr"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		TimeoutSeconds: depsdev.DefaultTimeout.Seconds(),
		MaxRetries:     depsdev.DefaultMaxRetries,
		BaseBackoff:    depsdev.DefaultBaseBackoff.Seconds(),
		MaxBackoff:     depsdev.DefaultMaxBackoff.Seconds(),
		Cache: CacheConfig{
			Backend: CacheBackendFile,
		},
	}
}

// LoadConfig reads the config file at path. An empty path selects the
// default location (~/.config/godepsdev/config.toml); a missing default
// file yields DefaultConfig, while an explicitly given path must exist.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone, "":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.TimeoutSeconds < 0 || c.BaseBackoff < 0 || c.MaxBackoff < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Timeout returns the per-attempt HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return secondsToDuration(c.TimeoutSeconds)
}

// BaseBackoffDuration returns the first backoff delay.
func (c *Config) BaseBackoffDuration() time.Duration {
	return secondsToDuration(c.BaseBackoff)
}

// MaxBackoffDuration returns the backoff ceiling.
func (c *Config) MaxBackoffDuration() time.Duration {
	return secondsToDuration(c.MaxBackoff)
}

// TTLDuration returns the cache entry lifetime.
func (c CacheConfig) TTLDuration() time.Duration {
	return secondsToDuration(c.TTLSeconds)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// defaultConfigPath returns ~/.config/godepsdev/config.toml, honoring
// XDG_CONFIG_HOME.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

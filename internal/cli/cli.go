// Package cli implements the godepsdev command-line interface.
//
// This package provides commands for querying the deps.dev API: package and
// version metadata, resolved dependency graphs, dependents, advisories,
// project information, and purl lookups. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - package, version: Package and version metadata
//   - requirements, deps, dependents, capabilities: Relationship queries
//   - project, project-versions: Source repository information
//   - advisory, query, purl, containers: Lookups
//   - cache: Manage the HTTP response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// also receives per-attempt fetch events (retries, backoff, give-ups).
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/eclipseo/godepsdev/pkg/buildinfo"
	"github.com/eclipseo/godepsdev/pkg/cache"
	"github.com/eclipseo/godepsdev/pkg/depsdev"
)

// appName is the application name used for directories and display.
const appName = "godepsdev"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	timeout    time.Duration
	retries    int
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		timeout: -1,
		retries: -1,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "godepsdev queries the deps.dev package metadata API",
		Long:         `godepsdev is a CLI client for the deps.dev API, providing package metadata, resolved dependency graphs, dependents, security advisories and project information across package management systems.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "bypass the response cache")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", -1, "per-attempt HTTP timeout")
	root.PersistentFlags().IntVar(&c.retries, "retries", -1, "maximum retries per request")

	root.AddCommand(c.packageCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.requirementsCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.dependentsCommand())
	root.AddCommand(c.capabilitiesCommand())
	root.AddCommand(c.projectCommand())
	root.AddCommand(c.projectVersionsCommand())
	root.AddCommand(c.advisoryCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.purlCommand())
	root.AddCommand(c.containersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newClient builds an API client from the config file, overridden by flags.
// The caller owns the returned client and must Close it.
func (c *CLI) newClient() (*depsdev.Client, error) {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout()
	if c.timeout >= 0 {
		timeout = c.timeout
	}
	retries := cfg.MaxRetries
	if c.retries >= 0 {
		retries = c.retries
	}

	store, err := c.newCache(cfg)
	if err != nil {
		return nil, err
	}

	return depsdev.New(
		depsdev.WithTimeout(timeout),
		depsdev.WithMaxRetries(retries),
		depsdev.WithBaseBackoff(cfg.BaseBackoffDuration()),
		depsdev.WithMaxBackoff(cfg.MaxBackoffDuration()),
		depsdev.WithCache(store, cfg.Cache.TTLDuration()),
		depsdev.WithHooks(&logHooks{logger: c.Logger}),
		depsdev.WithUserAgent(appName+"/"+buildinfo.Version),
	), nil
}

func (c *CLI) newCache(cfg *Config) (cache.Cache, error) {
	if c.noCache || cfg.Cache.Backend == CacheBackendNone {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case CacheBackendRedis:
		return cache.NewRedisCache(context.Background(), cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/godepsdev/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
)

// Config holds runtime settings for feed operations.
type Config struct {
	Verbose          bool
	Quiet            bool
	LogLevel         string
	ConfigPath       string
	CacheDir         string
	Backend          string
	Compress         bool
	FeedURL          string
	Listen           string
	Timeout          time.Duration
	Workers          int
	ValidateInterval time.Duration
	S3               S3Config
}

// IsLocal reports whether the selected backend keeps its data under CacheDir.
func (c *Config) IsLocal() bool {
	if c == nil {
		return false
	}
	switch c.Backend {
	case helpers.BackendFile, helpers.BackendBolt, helpers.BackendSQL:
		return true
	default:
		return false
	}
}

// BuildConfig builds Config from CLI flags and the optional zzfeed.toml.
func BuildConfig(c *cli.Context) (*Config, error) {
	cfg := newConfigFromCLI(c)
	applyTimeout(cfg, c)

	fileConfig, filePath, err := loadFileConfigFromCLI(c)
	if err != nil {
		return nil, err
	}
	applyFileConfig(cfg, c, fileConfig, filePath)

	if !slices.Contains(backends, cfg.Backend) {
		return nil, fmt.Errorf("%w: %q", helpers.ErrUnsupportedBackend, cfg.Backend)
	}

	s3Cfg, err := loadS3Config(c)
	if err != nil {
		return nil, err
	}
	if cfg.Backend == helpers.BackendS3 && !s3Cfg.Enabled {
		return nil, helpers.ErrS3BucketMissing
	}
	cfg.S3 = s3Cfg

	return cfg, nil
}

var backends = []string{
	helpers.BackendMemory,
	helpers.BackendFile,
	helpers.BackendBolt,
	helpers.BackendSQL,
	helpers.BackendS3,
}

func newConfigFromCLI(c *cli.Context) *Config {
	cfg := &Config{
		Workers:          c.Int("workers"),
		LogLevel:         c.String("log-level"),
		ValidateInterval: c.Duration("validate-interval"),
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.ValidateInterval <= 0 {
		cfg.ValidateInterval = helpers.ServerValidateInterval
	}
	cfg.Verbose = c.Bool("verbose")
	cfg.Quiet = !cfg.Verbose && c.Bool("quiet")
	return cfg
}

func applyTimeout(cfg *Config, c *cli.Context) {
	cfg.Timeout = c.Duration("timeout")
	cfg.Timeout = max(cfg.Timeout, helpers.FetchDefaultTimeout)
}

func loadFileConfigFromCLI(c *cli.Context) (fileConfig, string, error) {
	fileConfig, filePath, err := loadFileConfig(c.String("config"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fileConfig, "", fmt.Errorf("failed to load config file: %w", err)
	}
	return fileConfig, filePath, nil
}

// applyFileConfig fills values from the config file unless the matching
// flag (or its env var) was set explicitly.
func applyFileConfig(cfg *Config, c *cli.Context, file fileConfig, filePath string) {
	cfg.ConfigPath = filePath
	cfg.CacheDir = pick(c, "cache-dir", file.Cache.Dir)
	cfg.Backend = pick(c, "backend", file.Cache.Backend)
	cfg.FeedURL = pick(c, "feed-url", file.Remote.FeedURL)
	cfg.Listen = pick(c, "listen", file.Server.Listen)
	cfg.Compress = c.Bool("compress")
	if !c.IsSet("compress") && file.Cache.Compress != nil {
		cfg.Compress = *file.Cache.Compress
	}
}

func pick(c *cli.Context, flag, fromFile string) string {
	if !c.IsSet(flag) && fromFile != "" {
		return fromFile
	}
	return c.String(flag)
}

/*
zzfeed.toml

[cache]
dir = "/var/cache/go-zzfeed"
backend = "bolt"
compress = true

[remote]
feed_url = "https://example.com/v1/feed"

[server]
listen = ":8080"
*/

// fileCacheConfig maps the [cache] section.
type fileCacheConfig struct {
	Dir      string `toml:"dir"`
	Backend  string `toml:"backend"`
	Compress *bool  `toml:"compress"`
}

// fileRemoteConfig maps the [remote] section.
type fileRemoteConfig struct {
	FeedURL string `toml:"feed_url"`
}

// fileServerConfig maps the [server] section.
type fileServerConfig struct {
	Listen string `toml:"listen"`
}

// fileConfig represents the parsed zzfeed.toml structure.
type fileConfig struct {
	Cache  fileCacheConfig  `toml:"cache"`
	Remote fileRemoteConfig `toml:"remote"`
	Server fileServerConfig `toml:"server"`
}

// loadFileConfig loads zzfeed.toml if it exists.
func loadFileConfig(configPath string) (fileConfig, string, error) {
	config := fileConfig{}
	if configPath == "" {
		return config, "", os.ErrNotExist
	}
	if _, err := os.Stat(configPath); err != nil {
		return config, "", err
	}
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return config, "", fmt.Errorf("failed parse %s: %w", configPath, err)
	}
	return config, configPath, nil
}

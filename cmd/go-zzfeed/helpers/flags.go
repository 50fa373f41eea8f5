package helpers

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli/v2"
)

// CommonFlags defines shared CLI flags for all commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Verbose output",
			EnvVars: []string{"GO_ZZFEED_VERBOSE"},
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Quiet mode, not working with verbose",
			EnvVars: []string{"GO_ZZFEED_QUIET"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to zzfeed.toml",
			Value:   defaultConfigPath,
			EnvVars: []string{"GO_ZZFEED_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   defaultLogLevel,
			EnvVars: []string{"GO_ZZFEED_LOG_LEVEL"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "HTTP timeout duration",
			Value:   defaultTimeout,
			EnvVars: []string{"GO_ZZFEED_TIMEOUT"},
		},
	}
}

// CacheFlags defines CLI flags selecting and configuring the cache backend.
func CacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "Local cache directory",
			Value:   defaultCacheDir(),
			EnvVars: []string{"GO_ZZFEED_CACHE_DIR"},
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Cache backend: memory, file, bolt, sql or s3",
			Value:   defaultBackend,
			EnvVars: []string{"GO_ZZFEED_BACKEND"},
		},
		&cli.BoolFlag{
			Name:    "compress",
			Usage:   "Gzip the feed document of the file backend",
			EnvVars: []string{"GO_ZZFEED_COMPRESS"},
		},
	}
}

// RemoteFlags defines CLI flags for the remote feed API.
func RemoteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "feed-url",
			Aliases: []string{"u"},
			Usage:   "Remote feed URL",
			EnvVars: []string{"GO_ZZFEED_FEED_URL"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "Number of concurrent image downloads",
			Value:   runtime.NumCPU(),
			EnvVars: []string{"GO_ZZFEED_WORKERS"},
		},
	}
}

// ServerFlags defines CLI flags for the HTTP service.
func ServerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Aliases: []string{"l"},
			Usage:   "Listen address",
			Value:   defaultListen,
			EnvVars: []string{"GO_ZZFEED_LISTEN"},
		},
		&cli.DurationFlag{
			Name:    "validate-interval",
			Usage:   "How often the cached feed is validated",
			Value:   defaultValidateInterval,
			EnvVars: []string{"GO_ZZFEED_VALIDATE_INTERVAL"},
		},
	}
}

// S3Flags defines CLI flags for S3 cache configuration.
func S3Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "s3-bucket",
			Usage:   "S3 bucket name, required by the s3 backend",
			EnvVars: []string{"GO_ZZFEED_S3_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "s3-region",
			Usage:   "S3 region",
			EnvVars: []string{"GO_ZZFEED_S3_REGION"},
		},
		&cli.StringFlag{
			Name:    "s3-prefix",
			Usage:   "S3 key prefix",
			EnvVars: []string{"GO_ZZFEED_S3_PREFIX"},
		},
		&cli.StringFlag{
			Name:    "s3-access-key",
			Usage:   "S3 access key",
			EnvVars: []string{"GO_ZZFEED_S3_ACCESS_KEY", "AWS_ACCESS_KEY_ID"},
		},
		&cli.StringFlag{
			Name:    "s3-secret-key",
			Usage:   "S3 secret key",
			EnvVars: []string{"GO_ZZFEED_S3_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3 endpoint",
			EnvVars: []string{"GO_ZZFEED_S3_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "s3-session-token",
			Usage:   "S3 session token",
			EnvVars: []string{"GO_ZZFEED_S3_SESSION_TOKEN", "AWS_SESSION_TOKEN"},
		},
		&cli.BoolFlag{
			Name:    "s3-path-style-disabled",
			Usage:   "Use virtual-hosted addressing instead of path style",
			EnvVars: []string{"GO_ZZFEED_S3_PATH_STYLE_DISABLED"},
		},
	}
}

// StorageFlags joins the flags every cache-touching command accepts.
func StorageFlags() []cli.Flag {
	flags := CommonFlags()
	flags = append(flags, CacheFlags()...)
	return append(flags, S3Flags()...)
}

// defaultCacheDir prefers the platform cache directory and falls back to
// ~/.cache/go-zzfeed.
func defaultCacheDir() string {
	cacheDir, _ := os.UserCacheDir()
	home, _ := os.UserHomeDir()
	return cacheDirFrom(cacheDir, home)
}

func cacheDirFrom(cacheDir, home string) string {
	switch {
	case cacheDir != "":
		return filepath.Join(cacheDir, appDir)
	case home != "":
		return filepath.Join(home, dirSuffix)
	default:
		return filepath.Join(defaultHomeDir, dirSuffix)
	}
}

package commands

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/fetch"
	"github.com/greeddj/go-zzfeed/internal/feed/infra"
	"github.com/greeddj/go-zzfeed/internal/logger"
	"github.com/greeddj/go-zzfeed/internal/progress"
)

// setup builds config, output and runtime for a command. The returned func
// flushes logs and stops the spinner.
func setup(c *cli.Context) (*config.Config, *infra.Infra, func(), error) {
	cfg, err := config.BuildConfig(c)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "❌ Error: %s\n", err)
		return nil, nil, nil, err
	}
	p := progress.New(cfg.Verbose, cfg.Quiet)
	if cfg.Verbose {
		log.SetOutput(p)
	} else {
		log.SetOutput(io.Discard)
	}

	level := cfg.LogLevel
	if cfg.Verbose && !c.IsSet("log-level") {
		level = "debug"
	}
	if err := logger.Init(level, p); err != nil {
		p.Close()
		return nil, nil, nil, err
	}

	runtime := infra.New(p, fetch.New(cfg.Timeout, userAgent(c)), logger.Logger())
	runtime.DebugConfig(cfg)
	return cfg, runtime, func() {
		_ = logger.Sync()
		p.Close()
	}, nil
}

func userAgent(c *cli.Context) string {
	version := "dev"
	if fields := strings.Fields(c.App.Version); len(fields) > 0 {
		version = fields[0]
	}
	return c.App.Name + "/" + version
}

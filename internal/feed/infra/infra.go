package infra

import (
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/output"
)

// Infra holds runtime dependencies such as IO, logging and HTTP clients.
type Infra struct {
	Output  output.Printer
	HTTP    *http.Client
	Logger  *zap.Logger
	Now     func() time.Time
	TempDir func() string
}

// New builds Infra with default helpers for time and temp paths.
func New(out output.Printer, httpClient *http.Client, logger *zap.Logger) *Infra {
	if out == nil {
		out = output.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Infra{
		Output:  out,
		HTTP:    httpClient,
		Logger:  logger,
		Now:     time.Now,
		TempDir: os.TempDir,
	}
}

// DebugConfig reports which settings were sourced from the config file.
func (i *Infra) DebugConfig(cfg *config.Config) {
	if i == nil || i.Output == nil || cfg == nil || cfg.ConfigPath == "" {
		return
	}
	i.Output.Debugf("config %s: cache.dir=%s cache.backend=%s cache.compress=%t", cfg.ConfigPath, cfg.CacheDir, cfg.Backend, cfg.Compress)
	if cfg.FeedURL != "" {
		i.Output.Debugf("config %s: remote.feed_url=%s", cfg.ConfigPath, cfg.FeedURL)
	}
	if cfg.Listen != "" {
		i.Output.Debugf("config %s: server.listen=%s", cfg.ConfigPath, cfg.Listen)
	}
}

// Package pipeline runs the CLI workflows on top of a cache backend and the
// composed feed loaders.
package pipeline

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/multierr"

	cacheBackend "github.com/greeddj/go-zzfeed/internal/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/compose"
	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/infra"
)

// Session is an opened, locked backend with loaders composed over it.
type Session struct {
	Backend *cacheBackend.Backend
	Loaders *compose.Loaders
	release func() error
}

// Open opens the configured backend, takes its lock and composes loaders.
// With remote set the loaders fall back on the remote feed and image APIs.
func Open(ctx context.Context, cfg *config.Config, runtime *infra.Infra, remote bool) (*Session, error) {
	if cfg == nil {
		return nil, helpers.ErrConfigIsNil
	}
	var feedURL *url.URL
	if remote && cfg.FeedURL != "" {
		u, err := ParseFeedURL(cfg.FeedURL)
		if err != nil {
			return nil, err
		}
		feedURL = u
	}

	runtime.Output.Printf("🚀 init %s cache backend", cfg.Backend)
	backend, err := cacheBackend.New(ctx, cfg, runtime)
	if err != nil {
		return nil, err
	}
	release, err := backend.Lock(ctx)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, err
	}

	client := runtime.HTTP
	if !remote {
		client = nil
	}
	return &Session{
		Backend: backend,
		Loaders: compose.New(backend, client, feedURL, runtime.Now, runtime.Logger),
		release: release,
	}, nil
}

// Close releases the lock and closes the backend.
func (s *Session) Close(ctx context.Context) error {
	return multierr.Combine(s.release(), s.Backend.Close(ctx))
}

// ParseFeedURL parses raw and requires an absolute http(s) URL.
func ParseFeedURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, helpers.ErrFeedURLEmpty
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", helpers.ErrInvalidFeedURL, raw)
	}
	return u, nil
}

// ParseImageURL parses raw and requires an absolute URL.
func ParseImageURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, helpers.ErrImageURLEmpty
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("%w: %q", helpers.ErrInvalidImageURL, raw)
	}
	return u, nil
}

// run wraps a workflow so every failure is reported once.
func run(runtime *infra.Infra, fn func() error) error {
	err := fn()
	if err != nil {
		runtime.Output.PersistentPrintf("❌ Error: %s", err.Error())
	}
	return err
}

func withSession(ctx context.Context, cfg *config.Config, runtime *infra.Infra, remote bool, fn func(*Session) error) (err error) {
	session, err := Open(ctx, cfg, runtime, remote)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, session.Close(ctx))
	}()
	return fn(session)
}

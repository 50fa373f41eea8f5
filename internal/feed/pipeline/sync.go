package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/greeddj/go-zzfeed/internal/feed/compose"
	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/infra"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// Sync loads the feed from the remote API, falling back to the cache, prints
// it and warms the image cache.
func Sync(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	return run(runtime, func() error {
		if _, err := ParseFeedURL(cfg.FeedURL); err != nil {
			return err
		}
		start := time.Now()
		return withSession(ctx, cfg, runtime, true, func(s *Session) error {
			runtime.Output.Printf("🌐 load feed from %s", cfg.FeedURL)
			loadStart := time.Now()
			feed, err := s.Loaders.Feed.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load feed: %w", err)
			}
			runtime.Output.DebugSincef(loadStart, "%s", "load feed")
			printFeed(runtime, feed)

			failures := prefetchImages(ctx, runtime, s.Loaders.Image, feed, cfg.Workers)
			if failures > 0 {
				runtime.Output.PersistentPrintf("⚠️ Completed with errors: %d images failed. Took %s", failures, time.Since(start).Round(time.Millisecond))
				return fmt.Errorf("%w for %d images", helpers.ErrImagePrefetchFailed, failures)
			}
			runtime.Output.PersistentPrintf("🤩 All done: %d images. Took %s", len(feed), time.Since(start).Round(time.Millisecond))
			return nil
		})
	})
}

// prefetchImages loads every image of feed with at most workers requests in
// flight and returns how many failed.
func prefetchImages(ctx context.Context, runtime *infra.Infra, loader compose.ImageDataLoader, feed []model.FeedImage, workers int) int32 {
	var failures int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, image := range feed {
		if image.URL == nil {
			continue
		}
		g.Go(func() error {
			data, err := loader.LoadImageData(gctx, image.URL)
			if err != nil {
				atomic.AddInt32(&failures, 1)
				runtime.Output.PersistentPrintf("❌ Failed: %s error: %s", image.URL, err)
				return nil
			}
			runtime.Output.Debugf("image %s: %d bytes", image.URL, len(data))
			return nil
		})
	}
	_ = g.Wait()
	return atomic.LoadInt32(&failures)
}

func printFeed(runtime *infra.Infra, feed []model.FeedImage) {
	if len(feed) == 0 {
		runtime.Output.PersistentPrintf("📭 feed is empty")
		return
	}
	for _, image := range feed {
		line := image.ID.String()
		if image.Description != "" {
			line += " " + image.Description
		}
		if image.Location != "" {
			line += " @ " + image.Location
		}
		runtime.Output.PersistentPrintf("🖼️ %s %s", line, image.URL)
	}
}

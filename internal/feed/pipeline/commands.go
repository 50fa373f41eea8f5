package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	cacheBackend "github.com/greeddj/go-zzfeed/internal/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/infra"
)

// Show prints the cached feed without touching the network.
func Show(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	return run(runtime, func() error {
		return withSession(ctx, cfg, runtime, false, func(s *Session) error {
			feed, err := s.Loaders.Local.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load cached feed: %w", err)
			}
			printFeed(runtime, feed)
			return nil
		})
	})
}

// Validate evicts the cached feed when it is stale or unreadable.
func Validate(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	return run(runtime, func() error {
		return withSession(ctx, cfg, runtime, false, func(s *Session) error {
			start := time.Now()
			if err := s.Loaders.Local.ValidateCache(ctx); err != nil {
				return fmt.Errorf("failed to validate cache: %w", err)
			}
			runtime.Output.DebugSincef(start, "%s", "validate cache")
			runtime.Output.PersistentPrintf("✅ cache validated")
			return nil
		})
	})
}

// Image loads one image, from the cache first and the network second, and
// writes it to outPath. An empty outPath uses the last URL path segment.
func Image(ctx context.Context, cfg *config.Config, runtime *infra.Infra, rawURL, outPath string) error {
	return run(runtime, func() error {
		u, err := ParseImageURL(rawURL)
		if err != nil {
			return err
		}
		if outPath == "" {
			outPath = imageFileName(u.Path, rawURL)
		}
		return withSession(ctx, cfg, runtime, true, func(s *Session) error {
			data, err := s.Loaders.Image.LoadImageData(ctx, u)
			if err != nil {
				return fmt.Errorf("failed to load image: %w", err)
			}
			if dir := filepath.Dir(outPath); dir != "." {
				if err := os.MkdirAll(dir, helpers.DirMod); err != nil {
					return err
				}
			}
			if err := os.WriteFile(outPath, data, helpers.FileMod); err != nil {
				return err
			}
			runtime.Output.PersistentPrintf("✅ %s: %d bytes written to %s", u, len(data), outPath)
			return nil
		})
	})
}

// Clear removes every cached feed record and image blob.
func Clear(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	return run(runtime, func() error {
		runtime.Output.Printf("🧹 clear %s cache", cfg.Backend)
		removed, err := cacheBackend.Clear(ctx, cfg, runtime)
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		runtime.Output.PersistentPrintf("🧹 removed %d cache entries", removed)
		return nil
	})
}

func imageFileName(urlPath, rawURL string) string {
	base := path.Base(urlPath)
	if base == "." || base == "/" || base == "" {
		return helpers.BlobKey(rawURL)
	}
	return base
}

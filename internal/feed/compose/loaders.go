package compose

import (
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/remote"
	"github.com/greeddj/go-zzfeed/internal/logger"
)

// Loaders bundles the composed loaders used by commands and the HTTP service.
type Loaders struct {
	Local      *cache.LocalFeedLoader
	LocalImage *cache.LocalImageDataLoader
	Feed       FeedLoader
	Image      ImageDataLoader
}

// New composes remote and local loaders over store. When feedURL is nil the
// feed loader is local only.
func New(store cache.Store, client *http.Client, feedURL *url.URL, now func() time.Time, log *zap.Logger) *Loaders {
	log = logOrNop(log)
	cacheLog := logger.WithModule(log, "cache")
	local := cache.NewLocalFeedLoader(store, now, cache.WithLogger(cacheLog))
	localImage := cache.NewLocalImageDataLoader(store, cache.WithLogger(cacheLog))
	remoteLog := logger.WithModule(log, "remote")

	loaders := &Loaders{
		Local:      local,
		LocalImage: localImage,
		Feed:       local,
		Image:      localImage,
	}
	if client == nil {
		return loaders
	}

	loaders.Image = &ImageDataLoaderWithFallback{
		Primary: localImage,
		Fallback: &ImageDataLoaderCacheDecorator{
			Decoratee: remote.NewImageDataLoader(client, remoteLog),
			Cache:     localImage,
			Log:       log,
		},
		Log: log,
	}
	if feedURL != nil {
		loaders.Feed = &FeedLoaderWithFallback{
			Primary: &FeedLoaderCacheDecorator{
				Decoratee: remote.NewFeedLoader(client, feedURL, remoteLog),
				Cache:     local,
				Log:       log,
			},
			Fallback: local,
			Log:      log,
		}
	}
	return loaders
}

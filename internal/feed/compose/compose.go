// Package compose wires remote and local loaders together: remote first with
// a local fallback for the feed, local first with a remote fallback for image
// bytes, and write-through caching of every remote success.
package compose

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// FeedLoader loads a feed.
type FeedLoader interface {
	Load(ctx context.Context) ([]model.FeedImage, error)
}

// FeedCache persists a feed.
type FeedCache interface {
	Save(ctx context.Context, feed []model.FeedImage) error
}

// ImageDataLoader loads image bytes for a URL.
type ImageDataLoader interface {
	LoadImageData(ctx context.Context, u *url.URL) ([]byte, error)
}

// ImageDataCache persists image bytes for a URL.
type ImageDataCache interface {
	SaveImageData(ctx context.Context, data []byte, u *url.URL) error
}

// FeedLoaderWithFallback tries Primary and uses Fallback when it fails.
type FeedLoaderWithFallback struct {
	Primary  FeedLoader
	Fallback FeedLoader
	Log      *zap.Logger
}

// Load implements FeedLoader.
func (l *FeedLoaderWithFallback) Load(ctx context.Context) ([]model.FeedImage, error) {
	feed, err := l.Primary.Load(ctx)
	if err == nil {
		return feed, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	logOrNop(l.Log).Info("primary feed loader failed, using fallback", zap.Error(err))
	return l.Fallback.Load(ctx)
}

// ImageDataLoaderWithFallback tries Primary and uses Fallback when it fails.
type ImageDataLoaderWithFallback struct {
	Primary  ImageDataLoader
	Fallback ImageDataLoader
	Log      *zap.Logger
}

// LoadImageData implements ImageDataLoader.
func (l *ImageDataLoaderWithFallback) LoadImageData(ctx context.Context, u *url.URL) ([]byte, error) {
	data, err := l.Primary.LoadImageData(ctx, u)
	if err == nil {
		return data, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	logOrNop(l.Log).Debug("primary image loader failed, using fallback", zap.String("url", u.String()), zap.Error(err))
	return l.Fallback.LoadImageData(ctx, u)
}

// FeedLoaderCacheDecorator saves every feed Decoratee delivers. Save errors
// are logged and never reach the caller.
type FeedLoaderCacheDecorator struct {
	Decoratee FeedLoader
	Cache     FeedCache
	Log       *zap.Logger
}

// Load implements FeedLoader.
func (d *FeedLoaderCacheDecorator) Load(ctx context.Context) ([]model.FeedImage, error) {
	feed, err := d.Decoratee.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.Cache.Save(ctx, feed); err != nil {
		logOrNop(d.Log).Warn("caching loaded feed failed", zap.Error(err))
	}
	return feed, nil
}

// ImageDataLoaderCacheDecorator saves every image Decoratee delivers. Save
// errors are logged and never reach the caller.
type ImageDataLoaderCacheDecorator struct {
	Decoratee ImageDataLoader
	Cache     ImageDataCache
	Log       *zap.Logger
}

// LoadImageData implements ImageDataLoader.
func (d *ImageDataLoaderCacheDecorator) LoadImageData(ctx context.Context, u *url.URL) ([]byte, error) {
	data, err := d.Decoratee.LoadImageData(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := d.Cache.SaveImageData(ctx, data, u); err != nil {
		logOrNop(d.Log).Warn("caching loaded image failed", zap.String("url", u.String()), zap.Error(err))
	}
	return data, nil
}

func logOrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

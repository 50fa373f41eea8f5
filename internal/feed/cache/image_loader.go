package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/metrics"
)

var (
	// ErrImageNotFound indicates no image data is cached for the URL.
	ErrImageNotFound = errors.New("cached image data not found")
	// ErrImageLoadFailed indicates the store failed while reading image data.
	ErrImageLoadFailed = errors.New("cached image data load failed")
	// ErrImageSaveFailed indicates the store failed while writing image data.
	ErrImageSaveFailed = errors.New("cached image data save failed")
)

// LocalImageDataLoader reads and writes image bytes through an ImageDataStore.
// Store errors are folded into ErrImageLoadFailed and ErrImageSaveFailed.
type LocalImageDataLoader struct {
	store ImageDataStore
	log   *zap.Logger
}

// NewLocalImageDataLoader creates an image loader over store.
func NewLocalImageDataLoader(store ImageDataStore, opts ...Option) *LocalImageDataLoader {
	o := buildOptions(opts)
	return &LocalImageDataLoader{
		store: store,
		log:   o.log,
	}
}

// LoadImageData returns cached bytes for u. A context cancelled while the
// store is working wins over the store's result.
func (l *LocalImageDataLoader) LoadImageData(ctx context.Context, u *url.URL) ([]byte, error) {
	data, err := l.store.RetrieveImageData(ctx, u)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		metrics.ImageLoads.WithLabelValues("error").Inc()
		l.log.Warn("cached image retrieval failed", zap.Stringer("url", u), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImageLoadFailed, err) //nolint:errorlint // backend error is not part of the contract
	}
	if data == nil {
		metrics.ImageLoads.WithLabelValues("not_found").Inc()
		return nil, ErrImageNotFound
	}
	metrics.ImageLoads.WithLabelValues("hit").Inc()
	return data, nil
}

// SaveImageData stores data for u, replacing any previous bytes.
func (l *LocalImageDataLoader) SaveImageData(ctx context.Context, data []byte, u *url.URL) error {
	if err := l.store.InsertImageData(ctx, data, u); err != nil {
		l.log.Warn("cached image insertion failed", zap.Stringer("url", u), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrImageSaveFailed, err) //nolint:errorlint // backend error is not part of the contract
	}
	return nil
}

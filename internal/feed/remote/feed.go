package remote

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// NewFeedLoader returns a loader for the remote feed endpoint.
func NewFeedLoader(client *http.Client, feedURL *url.URL, log *zap.Logger) *Loader[[]model.FeedImage] {
	return NewLoader(client, feedURL, "feed", FeedItemsMapper, log)
}

// ImageDataLoader downloads image bytes for any URL.
type ImageDataLoader struct {
	client *http.Client
	log    *zap.Logger
}

// NewImageDataLoader creates an ImageDataLoader.
func NewImageDataLoader(client *http.Client, log *zap.Logger) *ImageDataLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageDataLoader{client: client, log: log}
}

// LoadImageData downloads the bytes at u.
func (l *ImageDataLoader) LoadImageData(ctx context.Context, u *url.URL) ([]byte, error) {
	return get(ctx, l.client, u, "image", ImageDataMapper, l.log)
}

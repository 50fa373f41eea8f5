package cache

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

var (
	// ErrRetrieval indicates the store could not read its medium.
	ErrRetrieval = errors.New("feed store retrieval failed")
	// ErrInsertion indicates the store could not write its medium.
	ErrInsertion = errors.New("feed store insertion failed")
	// ErrDeletion indicates the store could not remove its record.
	ErrDeletion = errors.New("feed store deletion failed")
)

// FeedStore persists at most one cached feed.
//
// Retrieve returns nil and no error when nothing is cached. Insert replaces any
// existing record and leaves the previous state visible when it fails.
// DeleteCachedFeed succeeds when nothing is cached.
type FeedStore interface {
	Retrieve(ctx context.Context) (*model.CachedFeed, error)
	Insert(ctx context.Context, feed []model.LocalFeedImage, timestamp time.Time) error
	DeleteCachedFeed(ctx context.Context) error
}

// ImageDataStore persists image bytes keyed by URL.
//
// RetrieveImageData returns nil and no error when the URL is unknown.
type ImageDataStore interface {
	RetrieveImageData(ctx context.Context, u *url.URL) ([]byte, error)
	InsertImageData(ctx context.Context, data []byte, u *url.URL) error
}

// Store is a complete cache backend.
type Store interface {
	FeedStore
	ImageDataStore
	Close(ctx context.Context) error
}

package memory

import (
	"bytes"
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// Store keeps the cache in process memory. Reads share the lock, writes take
// it exclusively, so operations apply in the order they acquire it.
type Store struct {
	mu     sync.RWMutex
	cached *model.CachedFeed
	images map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		images: make(map[string][]byte),
	}
}

// Retrieve returns a copy of the cached feed or nil when empty.
func (s *Store) Retrieve(_ context.Context) (*model.CachedFeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil {
		return nil, nil
	}
	return &model.CachedFeed{
		Feed:      model.CloneLocal(s.cached.Feed),
		Timestamp: s.cached.Timestamp,
	}, nil
}

// Insert replaces the cached feed.
func (s *Store) Insert(_ context.Context, feed []model.LocalFeedImage, timestamp time.Time) error {
	clone := model.CloneLocal(feed)
	if clone == nil {
		clone = []model.LocalFeedImage{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = &model.CachedFeed{Feed: clone, Timestamp: timestamp}
	return nil
}

// DeleteCachedFeed removes the cached feed.
func (s *Store) DeleteCachedFeed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	return nil
}

// RetrieveImageData returns a copy of the bytes stored for u.
func (s *Store) RetrieveImageData(_ context.Context, u *url.URL) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.images[u.String()]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(data), nil
}

// InsertImageData stores bytes for u.
func (s *Store) InsertImageData(_ context.Context, data []byte, u *url.URL) error {
	clone := bytes.Clone(data)
	if clone == nil {
		clone = []byte{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[u.String()] = clone
	return nil
}

// Close is a no-op.
func (s *Store) Close(_ context.Context) error {
	return nil
}

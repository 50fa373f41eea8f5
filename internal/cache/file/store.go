package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	gzip "github.com/klauspost/pgzip"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// Store keeps the cached feed in a single JSON document and image bytes in
// one file per URL, all on a billy filesystem.
type Store struct {
	mu       sync.RWMutex
	fs       billy.Filesystem
	feedPath string
	compress bool
}

// New creates a Store writing the feed document to feedPath on fs. Image
// blobs live in an images directory next to it.
func New(fs billy.Filesystem, feedPath string, compress bool) (*Store, error) {
	if feedPath == "" {
		return nil, errFeedPathEmpty
	}
	return &Store{
		fs:       fs,
		feedPath: feedPath,
		compress: compress,
	}, nil
}

// NewOS creates a Store rooted at dir on the local filesystem.
func NewOS(dir string, compress bool) (*Store, error) {
	if dir == "" {
		return nil, helpers.ErrCacheDirEmpty
	}
	name := helpers.StoreFeedFile
	if compress {
		name = helpers.StoreFeedFileGzip
	}
	return New(osfs.New(dir), name, compress)
}

// Retrieve reads the feed document.
func (s *Store) Retrieve(_ context.Context) (*model.CachedFeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, err := s.readFile(s.feedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	var doc model.FeedDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	cached, err := doc.Cached()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	return cached, nil
}

// Insert replaces the feed document atomically.
func (s *Store) Insert(_ context.Context, feed []model.LocalFeedImage, timestamp time.Time) error {
	doc := model.NewFeedDocument(feed, timestamp)
	payload, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeFile(s.feedPath, tempPrefix, payload); err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	return nil
}

// DeleteCachedFeed removes the feed document if present.
func (s *Store) DeleteCachedFeed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.Remove(s.feedPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", cache.ErrDeletion, err)
	}
	return nil
}

// RetrieveImageData reads the blob stored for u.
func (s *Store) RetrieveImageData(_ context.Context, u *url.URL) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.readFile(s.imagePath(u))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	return data, nil
}

// InsertImageData writes the blob for u atomically.
func (s *Store) InsertImageData(_ context.Context, data []byte, u *url.URL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeFile(s.imagePath(u), imagesPrefix, data); err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) imagePath(u *url.URL) string {
	return path.Join(path.Dir(s.feedPath), helpers.StoreImagesDir, helpers.BlobKey(u.String()))
}

// readFile reads name and inflates it when compression is enabled.
func (s *Store) readFile(name string) ([]byte, error) {
	raw, err := util.ReadFile(s.fs, name)
	if err != nil {
		return nil, err
	}
	if !s.compress {
		return raw, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = zr.Close()
	}()
	return io.ReadAll(zr)
}

// writeFile writes payload next to name and renames it into place.
func (s *Store) writeFile(name, prefix string, payload []byte) error {
	if s.compress {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			_ = zw.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		payload = buf.Bytes()
	}

	dir := path.Dir(name)
	if err := s.fs.MkdirAll(dir, helpers.DirMod); err != nil {
		return err
	}
	tmpFile, err := s.fs.TempFile(dir, prefix)
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	if _, err := tmpFile.Write(payload); err != nil {
		_ = tmpFile.Close()
		_ = s.fs.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		_ = s.fs.Remove(tmpPath)
		return err
	}
	if err := s.fs.Rename(tmpPath, name); err != nil {
		_ = s.fs.Remove(tmpPath)
		return err
	}
	return nil
}

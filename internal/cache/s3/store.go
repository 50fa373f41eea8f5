package s3

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	gzip "github.com/klauspost/pgzip"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// Store keeps the cached feed as one gzipped JSON object and image bytes as
// one object per URL in an S3-compatible bucket.
type Store struct {
	mu     sync.RWMutex
	client *Client
	prefix string
}

// New creates an S3-backed store for the given config.
func New(cfg config.S3Config, httpClient *http.Client) (*Store, error) {
	client, err := newClient(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	return &Store{
		client: client,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Open ensures the bucket exists.
func (s *Store) Open(ctx context.Context) error {
	return s.client.ensureBucket(ctx)
}

// Retrieve downloads and decodes the feed object.
func (s *Store) Retrieve(ctx context.Context) (*model.CachedFeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.readObject(ctx, s.key(statePrefix, feedObject))
	if err != nil {
		if errors.Is(err, errS3NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	var doc model.FeedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	cached, err := doc.Cached()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	return cached, nil
}

// Insert uploads the feed object, replacing any previous one.
func (s *Store) Insert(ctx context.Context, feed []model.LocalFeedImage, timestamp time.Time) error {
	doc := model.NewFeedDocument(feed, timestamp)
	payload, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		_ = zw.Close()
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.client.putObject(ctx, request{
		key:             s.key(statePrefix, feedObject),
		body:            buf.Bytes(),
		contentType:     "application/json",
		contentEncoding: "gzip",
	})
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	return nil
}

// DeleteCachedFeed removes the feed object.
func (s *Store) DeleteCachedFeed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.deleteObject(ctx, s.key(statePrefix, feedObject)); err != nil {
		return fmt.Errorf("%w: %w", cache.ErrDeletion, err)
	}
	return nil
}

// RetrieveImageData downloads the object stored for u.
func (s *Store) RetrieveImageData(ctx context.Context, u *url.URL) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _, err := s.client.getObject(ctx, s.imageKey(u))
	if err != nil {
		if errors.Is(err, errS3NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	return data, nil
}

// InsertImageData uploads the bytes for u.
func (s *Store) InsertImageData(ctx context.Context, data []byte, u *url.URL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.client.putObject(ctx, request{
		key:         s.imageKey(u),
		body:        append([]byte{}, data...),
		contentType: "application/octet-stream",
		meta:        map[string]string{"source-url": u.String()},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	return nil
}

// Clear removes every object under the configured prefix.
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, prefix := range []string{s.key(statePrefix) + "/", s.key(imagesPrefix) + "/"} {
		keys, err := s.client.listObjects(ctx, prefix)
		if err != nil {
			return removed, err
		}
		for _, key := range keys {
			if err := s.client.deleteObject(ctx, key); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// Close releases store resources.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// readObject downloads an object and inflates gzip payloads.
func (s *Store) readObject(ctx context.Context, key string) ([]byte, error) {
	data, headers, err := s.client.getObject(ctx, key)
	if err != nil {
		return nil, err
	}
	if !isGzip(headers) && !strings.HasSuffix(key, ".gz") {
		return data, nil
	}
	buffered := bufio.NewReader(bytes.NewReader(data))
	if !isGzipStream(buffered) {
		return data, nil
	}
	zr, err := gzip.NewReader(buffered)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = zr.Close()
	}()
	return io.ReadAll(zr)
}

func (s *Store) imageKey(u *url.URL) string {
	return s.key(imagesPrefix, helpers.BlobKey(u.String()))
}

// key builds a key under the configured prefix.
func (s *Store) key(parts ...string) string {
	if s.prefix == "" {
		return path.Join(parts...)
	}
	return path.Join(append([]string{s.prefix}, parts...)...)
}

// isGzip reports whether the headers indicate gzip encoding.
func isGzip(headers http.Header) bool {
	return strings.Contains(strings.ToLower(headers.Get("Content-Encoding")), "gzip")
}

// isGzipStream reports whether the stream begins with gzip magic bytes.
func isGzipStream(reader *bufio.Reader) bool {
	header, err := reader.Peek(2)
	return err == nil && header[0] == 0x1f && header[1] == 0x8b
}

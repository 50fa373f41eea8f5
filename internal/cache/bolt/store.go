package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

var (
	errTimestampMissing = errors.New("feed bucket has no timestamp")
	errItemsMissing     = errors.New("feed bucket has no items")
)

// Store keeps the cached feed and image blobs in a single BoltDB file.
type Store struct {
	db *bolt.DB
}

// New opens (or creates) the BoltDB file at path.
func New(path string) (*Store, error) {
	return open(path, nil)
}

func open(path string, opts *bolt.Options) (*Store, error) {
	if path == "" {
		return nil, helpers.ErrCacheDirEmpty
	}
	db, err := bolt.Open(path, helpers.FileMod, opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Retrieve reads the feed bucket in one read transaction.
func (s *Store) Retrieve(_ context.Context) (*model.CachedFeed, error) {
	var cached *model.CachedFeed
	err := s.db.View(func(tx *bolt.Tx) error {
		feedBucket := tx.Bucket([]byte(helpers.StoreBucketFeed))
		if feedBucket == nil {
			return nil
		}
		rawTimestamp := feedBucket.Get([]byte(helpers.StoreKeyTimestamp))
		if rawTimestamp == nil {
			return errTimestampMissing
		}
		timestamp, err := time.Parse(time.RFC3339Nano, string(rawTimestamp))
		if err != nil {
			return err
		}
		items := feedBucket.Bucket([]byte(helpers.StoreBucketItems))
		if items == nil {
			return errItemsMissing
		}
		feed := []model.LocalFeedImage{}
		if err := items.ForEach(func(_, v []byte) error {
			var entry model.StoredImage
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			image, err := entry.Decode()
			if err != nil {
				return err
			}
			feed = append(feed, image)
			return nil
		}); err != nil {
			return err
		}
		cached = &model.CachedFeed{Feed: feed, Timestamp: timestamp}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	return cached, nil
}

// Insert recreates the feed bucket with the new record in one write transaction.
func (s *Store) Insert(_ context.Context, feed []model.LocalFeedImage, timestamp time.Time) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		feedBucket, err := ensureEmptyBucket(tx, helpers.StoreBucketFeed)
		if err != nil {
			return err
		}
		if err := feedBucket.Put([]byte(helpers.StoreKeyTimestamp), []byte(timestamp.Format(time.RFC3339Nano))); err != nil {
			return err
		}
		items, err := feedBucket.CreateBucket([]byte(helpers.StoreBucketItems))
		if err != nil {
			return err
		}
		for i, entry := range model.EncodeFeed(feed) {
			payload, err := json.Marshal(&entry)
			if err != nil {
				return err
			}
			if err := items.Put(positionKey(i), payload); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	return nil
}

// DeleteCachedFeed drops the feed bucket if present.
func (s *Store) DeleteCachedFeed(_ context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(helpers.StoreBucketFeed)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(helpers.StoreBucketFeed))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrDeletion, err)
	}
	return nil
}

// RetrieveImageData returns a copy of the blob stored for u.
func (s *Store) RetrieveImageData(_ context.Context, u *url.URL) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		images := tx.Bucket([]byte(helpers.StoreBucketImages))
		if images == nil {
			return nil
		}
		if value := images.Get([]byte(u.String())); value != nil {
			data = append([]byte{}, value...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	return data, nil
}

// InsertImageData upserts the blob for u.
func (s *Store) InsertImageData(_ context.Context, data []byte, u *url.URL) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		images, err := tx.CreateBucketIfNotExists([]byte(helpers.StoreBucketImages))
		if err != nil {
			return err
		}
		return images.Put([]byte(u.String()), append([]byte{}, data...))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	return nil
}

// Close closes the BoltDB handle.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// ensureEmptyBucket recreates a bucket to ensure it is empty.
func ensureEmptyBucket(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(name))
	if bucket != nil {
		if err := tx.DeleteBucket([]byte(name)); err != nil {
			return nil, err
		}
	}
	return tx.CreateBucket([]byte(name))
}

// positionKey keeps ForEach order equal to insertion order.
func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

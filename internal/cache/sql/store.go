package sql

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// Store keeps the cached feed in relational tables through gorm.
// A single mutex serialises every operation on the connection.
type Store struct {
	mu sync.Mutex
	db *gorm.DB
}

// New opens a SQLite database from dsn and migrates the schema.
func New(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, helpers.ErrCacheDirEmpty
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := db.AutoMigrate(&FeedCache{}, &FeedImageRecord{}, &FeedImageData{}); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewFile opens (or creates) a SQLite database file at path.
func NewFile(path string) (*Store, error) {
	if path == "" {
		return nil, helpers.ErrCacheDirEmpty
	}
	if err := os.MkdirAll(filepath.Dir(path), helpers.DirMod); err != nil {
		return nil, err
	}
	return New(fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL", filepath.ToSlash(path)))
}

// Retrieve loads the cache row with its images ordered by position.
func (s *Store) Retrieve(ctx context.Context) (*model.CachedFeed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row FeedCache
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}

	feed := make([]model.LocalFeedImage, 0, len(row.Images))
	for _, record := range row.Images {
		image, err := decodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
		}
		feed = append(feed, image)
	}
	return &model.CachedFeed{Feed: feed, Timestamp: row.Timestamp}, nil
}

// Insert replaces any existing cache row in one transaction.
func (s *Store) Insert(ctx context.Context, feed []model.LocalFeedImage, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := FeedCache{
		Timestamp: timestamp,
		Images:    make([]FeedImageRecord, 0, len(feed)),
	}
	for i, image := range feed {
		row.Images = append(row.Images, encodeRecord(i, image))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAll(tx); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	return nil
}

// DeleteCachedFeed removes the cache row and its images.
func (s *Store) DeleteCachedFeed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Transaction(deleteAll); err != nil {
		return fmt.Errorf("%w: %w", cache.ErrDeletion, err)
	}
	return nil
}

// RetrieveImageData returns the bytes stored for u.
func (s *Store) RetrieveImageData(ctx context.Context, u *url.URL) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row FeedImageData
	err := s.db.WithContext(ctx).Take(&row, "url = ?", u.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrRetrieval, err)
	}
	if row.Data == nil {
		return []byte{}, nil
	}
	return row.Data, nil
}

// InsertImageData upserts the bytes for u.
func (s *Store) InsertImageData(ctx context.Context, data []byte, u *url.URL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := FeedImageData{
		URL:  u.String(),
		Data: append([]byte{}, data...),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: %w", cache.ErrInsertion, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func deleteAll(tx *gorm.DB) error {
	global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := global.Delete(&FeedImageRecord{}).Error; err != nil {
		return err
	}
	return global.Delete(&FeedCache{}).Error
}

func encodeRecord(position int, image model.LocalFeedImage) FeedImageRecord {
	record := FeedImageRecord{
		Position: position,
		ImageID:  image.ID.String(),
	}
	if image.Description != "" {
		record.Description = &image.Description
	}
	if image.Location != "" {
		record.Location = &image.Location
	}
	if image.URL != nil {
		record.URL = image.URL.String()
	}
	return record
}

func decodeRecord(record FeedImageRecord) (model.LocalFeedImage, error) {
	id, err := uuid.Parse(record.ImageID)
	if err != nil {
		return model.LocalFeedImage{}, fmt.Errorf("invalid image id %q: %w", record.ImageID, err)
	}
	u, err := url.Parse(record.URL)
	if err != nil {
		return model.LocalFeedImage{}, fmt.Errorf("invalid image url %q: %w", record.URL, err)
	}
	image := model.LocalFeedImage{ID: id, URL: u}
	if record.Description != nil {
		image.Description = *record.Description
	}
	if record.Location != nil {
		image.Location = *record.Location
	}
	return image, nil
}

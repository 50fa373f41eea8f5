package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/feed/model"
	"github.com/greeddj/go-zzfeed/internal/metrics"
)

// LocalFeedLoader reads, writes and validates the cached feed through a FeedStore.
type LocalFeedLoader struct {
	store FeedStore
	now   func() time.Time
	log   *zap.Logger
}

// NewLocalFeedLoader creates a loader over store using now as its clock.
func NewLocalFeedLoader(store FeedStore, now func() time.Time, opts ...Option) *LocalFeedLoader {
	o := buildOptions(opts)
	return &LocalFeedLoader{
		store: store,
		now:   now,
		log:   o.log,
	}
}

// Load returns the cached feed when it is fresh and an empty feed otherwise.
// A stale record is left in place; eviction belongs to ValidateCache.
func (l *LocalFeedLoader) Load(ctx context.Context) ([]model.FeedImage, error) {
	cached, err := l.store.Retrieve(ctx)
	if err != nil {
		metrics.FeedLoads.WithLabelValues("error").Inc()
		l.log.Warn("cached feed retrieval failed", zap.Error(err))
		return nil, err
	}
	if cached == nil {
		metrics.FeedLoads.WithLabelValues("empty").Inc()
		return []model.FeedImage{}, nil
	}
	if !Validate(cached.Timestamp, l.now()) {
		metrics.FeedLoads.WithLabelValues("stale").Inc()
		l.log.Debug("cached feed is stale", zap.Time("timestamp", cached.Timestamp))
		return []model.FeedImage{}, nil
	}
	metrics.FeedLoads.WithLabelValues("hit").Inc()
	return model.ToModels(cached.Feed), nil
}

// Save replaces the cached feed. The previous record is deleted first and
// nothing is inserted when that deletion fails.
func (l *LocalFeedLoader) Save(ctx context.Context, feed []model.FeedImage) error {
	if err := l.store.DeleteCachedFeed(ctx); err != nil {
		metrics.FeedSaves.WithLabelValues("delete_error").Inc()
		l.log.Warn("cached feed deletion failed", zap.Error(err))
		return err
	}
	timestamp := l.now()
	if err := l.store.Insert(ctx, model.ToLocal(feed), timestamp); err != nil {
		metrics.FeedSaves.WithLabelValues("insert_error").Inc()
		l.log.Warn("cached feed insertion failed", zap.Error(err))
		return err
	}
	metrics.FeedSaves.WithLabelValues("success").Inc()
	l.log.Debug("cached feed saved", zap.Int("items", len(feed)), zap.Time("timestamp", timestamp))
	return nil
}

// ValidateCache deletes the cached feed when it is stale or unreadable and
// reports the outcome of that deletion.
func (l *LocalFeedLoader) ValidateCache(ctx context.Context) error {
	cached, err := l.store.Retrieve(ctx)
	switch {
	case err != nil:
		l.log.Info("evicting unreadable cached feed", zap.Error(err))
		return l.evict(ctx, "unreadable")
	case cached == nil:
		return nil
	case !Validate(cached.Timestamp, l.now()):
		l.log.Info("evicting stale cached feed", zap.Time("timestamp", cached.Timestamp))
		return l.evict(ctx, "stale")
	default:
		return nil
	}
}

func (l *LocalFeedLoader) evict(ctx context.Context, reason string) error {
	if err := l.store.DeleteCachedFeed(ctx); err != nil {
		return err
	}
	metrics.FeedEvictions.WithLabelValues(reason).Inc()
	return nil
}

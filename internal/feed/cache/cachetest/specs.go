// Package cachetest holds the behaviour every cache backend must share, written
// once and run against each backend from its own tests.
package cachetest

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// FeedStoreFactory returns a fresh, empty store for one test.
type FeedStoreFactory func(t *testing.T) cache.FeedStore

// ImageDataStoreFactory returns a fresh, empty image store for one test.
type ImageDataStoreFactory func(t *testing.T) cache.ImageDataStore

// FailingFeedStoreFactory returns a store that holds seed (empty when seed is
// nil) and whose medium was broken afterwards: reads work, writes fail.
type FailingFeedStoreFactory func(t *testing.T, seed *model.CachedFeed) cache.FeedStore

// CorruptibleFeedStoreFactory returns a fresh store and a hook that damages its medium.
type CorruptibleFeedStoreFactory func(t *testing.T) (cache.FeedStore, func(t *testing.T))

// RunFeedStoreSpecs checks retrieve, insert and delete semantics.
func RunFeedStoreSpecs(t *testing.T, makeSUT FeedStoreFactory) {
	t.Helper()

	t.Run("retrieve delivers empty on empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		expectEmpty(t, sut)
	})

	t.Run("retrieve has no side effects on empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		expectEmpty(t, sut)
		expectEmpty(t, sut)
	})

	t.Run("retrieve delivers found values on non-empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		feed, timestamp := UniqueFeed(), FixedTime()
		mustInsert(t, sut, feed, timestamp)
		expectFound(t, sut, feed, timestamp)
	})

	t.Run("retrieve has no side effects on non-empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		feed, timestamp := UniqueFeed(), FixedTime()
		mustInsert(t, sut, feed, timestamp)
		expectFound(t, sut, feed, timestamp)
		expectFound(t, sut, feed, timestamp)
	})

	t.Run("retrieve preserves insertion order", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		feed := make([]model.LocalFeedImage, 0, 25)
		for range 25 {
			feed = append(feed, UniqueImage())
		}
		mustInsert(t, sut, feed, FixedTime())
		expectFound(t, sut, feed, FixedTime())
	})

	t.Run("insert delivers no error on empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		require.NoError(t, sut.Insert(context.Background(), UniqueFeed(), FixedTime()))
	})

	t.Run("insert delivers no error on non-empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		mustInsert(t, sut, UniqueFeed(), FixedTime())
		require.NoError(t, sut.Insert(context.Background(), UniqueFeed(), FixedTime()))
	})

	t.Run("insert overrides previously inserted cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		mustInsert(t, sut, []model.LocalFeedImage{UniqueImage(), UniqueImage(), UniqueImage()}, FixedTime())
		latest, latestTimestamp := []model.LocalFeedImage{UniqueImage()}, FixedTime().Add(time.Hour)
		mustInsert(t, sut, latest, latestTimestamp)
		expectFound(t, sut, latest, latestTimestamp)
	})

	t.Run("insert accepts an empty feed", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		mustInsert(t, sut, UniqueFeed(), FixedTime())
		mustInsert(t, sut, []model.LocalFeedImage{}, FixedTime())
		cached, err := sut.Retrieve(context.Background())
		require.NoError(t, err)
		require.NotNil(t, cached)
		require.Empty(t, cached.Feed)
		require.True(t, FixedTime().Equal(cached.Timestamp))
	})

	t.Run("delete delivers no error on empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		require.NoError(t, sut.DeleteCachedFeed(context.Background()))
	})

	t.Run("delete has no side effects on empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		require.NoError(t, sut.DeleteCachedFeed(context.Background()))
		expectEmpty(t, sut)
	})

	t.Run("delete delivers no error on non-empty cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		mustInsert(t, sut, UniqueFeed(), FixedTime())
		require.NoError(t, sut.DeleteCachedFeed(context.Background()))
	})

	t.Run("delete empties previously inserted cache", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		mustInsert(t, sut, UniqueFeed(), FixedTime())
		require.NoError(t, sut.DeleteCachedFeed(context.Background()))
		expectEmpty(t, sut)
	})
}

// RunFailableRetrieveSpecs checks retrieval failures on a damaged medium.
func RunFailableRetrieveSpecs(t *testing.T, makeSUT CorruptibleFeedStoreFactory) {
	t.Helper()

	t.Run("retrieve delivers failure on retrieval error", func(t *testing.T) {
		t.Parallel()
		sut, corrupt := makeSUT(t)
		corrupt(t)
		_, err := sut.Retrieve(context.Background())
		require.ErrorIs(t, err, cache.ErrRetrieval)
	})

	t.Run("retrieve has no side effects on failure", func(t *testing.T) {
		t.Parallel()
		sut, corrupt := makeSUT(t)
		corrupt(t)
		_, first := sut.Retrieve(context.Background())
		_, second := sut.Retrieve(context.Background())
		require.ErrorIs(t, first, cache.ErrRetrieval)
		require.ErrorIs(t, second, cache.ErrRetrieval)
	})

	t.Run("delete recovers a damaged cache", func(t *testing.T) {
		t.Parallel()
		sut, corrupt := makeSUT(t)
		corrupt(t)
		require.NoError(t, sut.DeleteCachedFeed(context.Background()))
		expectEmpty(t, sut)
	})
}

// RunFailableInsertSpecs checks insertion failures. makeSUT returns a store
// holding seed whose medium rejects writes afterwards.
func RunFailableInsertSpecs(t *testing.T, makeSUT FailingFeedStoreFactory) {
	t.Helper()

	t.Run("insert delivers error on insertion error", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t, nil)
		err := sut.Insert(context.Background(), UniqueFeed(), FixedTime())
		require.ErrorIs(t, err, cache.ErrInsertion)
	})

	t.Run("insert has no side effects on empty cache on insertion error", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t, nil)
		expectEmpty(t, sut)
		_ = sut.Insert(context.Background(), UniqueFeed(), FixedTime())
		expectEmpty(t, sut)
	})

	t.Run("insert keeps previous record on insertion error", func(t *testing.T) {
		t.Parallel()
		seed := seedRecord()
		sut := makeSUT(t, seed)
		expectFound(t, sut, seed.Feed, seed.Timestamp)
		err := sut.Insert(context.Background(), UniqueFeed(), FixedTime().Add(time.Hour))
		require.ErrorIs(t, err, cache.ErrInsertion)
		expectFound(t, sut, seed.Feed, seed.Timestamp)
	})
}

// RunFailableDeleteSpecs checks deletion failures. makeSUT returns a store
// holding seed whose medium rejects writes afterwards.
func RunFailableDeleteSpecs(t *testing.T, makeSUT FailingFeedStoreFactory) {
	t.Helper()

	t.Run("delete delivers error on deletion error", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t, seedRecord())
		require.ErrorIs(t, sut.DeleteCachedFeed(context.Background()), cache.ErrDeletion)
	})

	t.Run("delete keeps previous record on deletion error", func(t *testing.T) {
		t.Parallel()
		seed := seedRecord()
		sut := makeSUT(t, seed)
		expectFound(t, sut, seed.Feed, seed.Timestamp)
		_ = sut.DeleteCachedFeed(context.Background())
		expectFound(t, sut, seed.Feed, seed.Timestamp)
	})
}

// Seed inserts seed into sut; a nil seed leaves the store empty.
func Seed(t *testing.T, sut cache.FeedStore, seed *model.CachedFeed) {
	t.Helper()
	if seed == nil {
		return
	}
	mustInsert(t, sut, seed.Feed, seed.Timestamp)
}

func seedRecord() *model.CachedFeed {
	return &model.CachedFeed{Feed: UniqueFeed(), Timestamp: FixedTime().Add(-time.Minute)}
}

// RunSerialOrderingSpecs checks that concurrent writers never produce a merged
// record and that readers only ever observe complete records.
func RunSerialOrderingSpecs(t *testing.T, makeSUT FeedStoreFactory) {
	t.Helper()

	t.Run("concurrent inserts leave exactly one complete record", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		const writers = 8
		feeds := make(map[uuid.UUID][]model.LocalFeedImage, writers)
		ordered := make([][]model.LocalFeedImage, 0, writers)
		for i := range writers {
			feed := make([]model.LocalFeedImage, 0, i+1)
			for range i + 1 {
				feed = append(feed, UniqueImage())
			}
			feeds[feed[0].ID] = feed
			ordered = append(ordered, feed)
		}

		ctx := context.Background()
		var wg sync.WaitGroup
		errs := make(chan error, writers*4)
		for _, feed := range ordered {
			wg.Add(2)
			go func() {
				defer wg.Done()
				if err := sut.DeleteCachedFeed(ctx); err != nil {
					errs <- err
					return
				}
				if err := sut.Insert(ctx, feed, FixedTime()); err != nil {
					errs <- err
				}
			}()
			go func() {
				defer wg.Done()
				cached, err := sut.Retrieve(ctx)
				if err != nil {
					errs <- err
					return
				}
				if err := checkComplete(cached, feeds); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		cached, err := sut.Retrieve(ctx)
		require.NoError(t, err)
		require.NotNil(t, cached)
		require.NoError(t, checkComplete(cached, feeds))
	})

	t.Run("sequential operations observe previous writes", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		ctx := context.Background()
		for i := range 5 {
			feed := []model.LocalFeedImage{UniqueImage()}
			timestamp := FixedTime().Add(time.Duration(i) * time.Minute)
			require.NoError(t, sut.Insert(ctx, feed, timestamp))
			expectFound(t, sut, feed, timestamp)
			require.NoError(t, sut.DeleteCachedFeed(ctx))
			expectEmpty(t, sut)
		}
	})
}

// RunImageDataStoreSpecs checks image blob semantics.
func RunImageDataStoreSpecs(t *testing.T, makeSUT ImageDataStoreFactory) {
	t.Helper()

	t.Run("retrieve delivers not found on empty store", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		data, err := sut.RetrieveImageData(context.Background(), AnyURL())
		require.NoError(t, err)
		require.Nil(t, data)
	})

	t.Run("retrieve delivers not found when stored url does not match", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		mustInsertData(t, sut, []byte("data"), URL("https://a-url.com/stored"))
		data, err := sut.RetrieveImageData(context.Background(), URL("https://a-url.com/other"))
		require.NoError(t, err)
		require.Nil(t, data)
	})

	t.Run("retrieve delivers found data for matching url", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		u := AnyURL()
		mustInsertData(t, sut, []byte("data"), u)
		data, err := sut.RetrieveImageData(context.Background(), URL(u.String()))
		require.NoError(t, err)
		require.Equal(t, []byte("data"), data)
	})

	t.Run("retrieve delivers last inserted value", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		u := AnyURL()
		mustInsertData(t, sut, []byte("first"), u)
		mustInsertData(t, sut, []byte("last"), u)
		data, err := sut.RetrieveImageData(context.Background(), u)
		require.NoError(t, err)
		require.Equal(t, []byte("last"), data)
	})

	t.Run("records are independent per url", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		a, b := URL("https://a-url.com/a"), URL("https://a-url.com/b")
		mustInsertData(t, sut, []byte("a"), a)
		mustInsertData(t, sut, []byte("b"), b)
		dataA, err := sut.RetrieveImageData(context.Background(), a)
		require.NoError(t, err)
		dataB, err := sut.RetrieveImageData(context.Background(), b)
		require.NoError(t, err)
		require.Equal(t, []byte("a"), dataA)
		require.Equal(t, []byte("b"), dataB)
	})

	t.Run("image data survives feed replacement", func(t *testing.T) {
		t.Parallel()
		sut := makeSUT(t)
		feedStore, ok := sut.(cache.FeedStore)
		if !ok {
			t.Skip("store does not hold a feed")
		}
		image := UniqueImage()
		mustInsert(t, feedStore, []model.LocalFeedImage{image}, FixedTime())
		mustInsertData(t, sut, []byte("data"), image.URL)
		require.NoError(t, feedStore.DeleteCachedFeed(context.Background()))
		mustInsert(t, feedStore, UniqueFeed(), FixedTime())
		data, err := sut.RetrieveImageData(context.Background(), image.URL)
		require.NoError(t, err)
		require.Equal(t, []byte("data"), data)
	})
}

func checkComplete(cached *model.CachedFeed, feeds map[uuid.UUID][]model.LocalFeedImage) error {
	if cached == nil {
		return nil
	}
	if len(cached.Feed) == 0 {
		return fmt.Errorf("observed an empty feed record")
	}
	want, ok := feeds[cached.Feed[0].ID]
	if !ok {
		return fmt.Errorf("observed unknown feed %s", cached.Feed[0].ID)
	}
	if len(want) != len(cached.Feed) {
		return fmt.Errorf("observed partial feed: %d of %d items", len(cached.Feed), len(want))
	}
	for i := range want {
		if want[i].ID != cached.Feed[i].ID {
			return fmt.Errorf("observed merged feed at item %d", i)
		}
	}
	return nil
}

func expectEmpty(t *testing.T, sut cache.FeedStore) {
	t.Helper()
	cached, err := sut.Retrieve(context.Background())
	require.NoError(t, err)
	require.Nil(t, cached)
}

func expectFound(t *testing.T, sut cache.FeedStore, feed []model.LocalFeedImage, timestamp time.Time) {
	t.Helper()
	cached, err := sut.Retrieve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cached)
	require.Equal(t, feed, cached.Feed)
	require.True(t, timestamp.Equal(cached.Timestamp), "expected timestamp %s, got %s", timestamp, cached.Timestamp)
}

func mustInsert(t *testing.T, sut cache.FeedStore, feed []model.LocalFeedImage, timestamp time.Time) {
	t.Helper()
	require.NoError(t, sut.Insert(context.Background(), feed, timestamp))
}

func mustInsertData(t *testing.T, sut cache.ImageDataStore, data []byte, u *url.URL) {
	t.Helper()
	require.NoError(t, sut.InsertImageData(context.Background(), data, u))
}

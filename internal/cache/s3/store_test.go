package s3

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/cache/cachetest"
	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

const testBucket = "feed-cache"

var _ cache.Store = (*Store)(nil)

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake, srv := newFakeS3(t, testBucket)
	store, err := New(config.S3Config{
		Enabled:   true,
		Endpoint:  srv.URL,
		Bucket:    testBucket,
		Prefix:    "/team/",
		AccessKey: "access",
		SecretKey: "secret",
		PathStyle: true,
	}, srv.Client())
	require.NoError(t, err)
	require.NoError(t, store.Open(context.Background()))
	return store, fake
}

func TestFeedStoreSpecs(t *testing.T) {
	t.Parallel()
	cachetest.RunFeedStoreSpecs(t, func(t *testing.T) cache.FeedStore {
		store, _ := newTestStore(t)
		return store
	})
}

func TestFailableRetrieveSpecs(t *testing.T) {
	t.Parallel()
	cachetest.RunFailableRetrieveSpecs(t, func(t *testing.T) (cache.FeedStore, func(t *testing.T)) {
		store, fake := newTestStore(t)
		corrupt := func(_ *testing.T) {
			fake.put("team/state/feed.json.gz", []byte("invalid data"), http.Header{})
		}
		return store, corrupt
	})
}

func TestFailableInsertSpecs(t *testing.T) {
	t.Parallel()
	cachetest.RunFailableInsertSpecs(t, func(t *testing.T, seed *model.CachedFeed) cache.FeedStore {
		store, fake := newTestStore(t)
		cachetest.Seed(t, store, seed)
		fake.failOn(http.MethodPut)
		return store
	})
}

func TestFailableDeleteSpecs(t *testing.T) {
	t.Parallel()
	cachetest.RunFailableDeleteSpecs(t, func(t *testing.T, seed *model.CachedFeed) cache.FeedStore {
		store, fake := newTestStore(t)
		cachetest.Seed(t, store, seed)
		fake.failOn(http.MethodDelete)
		return store
	})
}

func TestSerialOrderingSpecs(t *testing.T) {
	t.Parallel()
	cachetest.RunSerialOrderingSpecs(t, func(t *testing.T) cache.FeedStore {
		store, _ := newTestStore(t)
		return store
	})
}

func TestImageDataStoreSpecs(t *testing.T) {
	t.Parallel()
	cachetest.RunImageDataStoreSpecs(t, func(t *testing.T) cache.ImageDataStore {
		store, _ := newTestStore(t)
		return store
	})
}

func TestStoreLayout(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, cachetest.UniqueFeed(), cachetest.FixedTime()))
	require.NoError(t, store.InsertImageData(ctx, []byte("data"), cachetest.AnyURL()))

	keys := fake.keys()
	require.Len(t, keys, 2)
	require.True(t, strings.HasPrefix(keys[0], "team/images/"), keys[0])
	require.Equal(t, "team/state/feed.json.gz", keys[1])
	_, unsigned := fake.state()
	require.Zero(t, unsigned)
}

func TestStoreClear(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, cachetest.UniqueFeed(), cachetest.FixedTime()))
	require.NoError(t, store.InsertImageData(ctx, []byte("a"), cachetest.URL("https://a-url.com/a")))
	require.NoError(t, store.InsertImageData(ctx, []byte("b"), cachetest.URL("https://a-url.com/b")))
	fake.put("other/keep", []byte("x"), http.Header{})

	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, removed)
	require.Equal(t, []string{"other/keep"}, fake.keys())
}

func TestOpenCreatesBucket(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	created, _ := fake.state()
	require.True(t, created)
	require.NoError(t, store.Open(context.Background()))
}

func TestLock(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()

	release, err := store.Lock(ctx)
	require.NoError(t, err)
	require.Contains(t, fake.keys(), "team/locks/feed.lock")

	_, err = store.Lock(ctx)
	require.True(t, errors.Is(err, errS3LockAlreadyExists), "got %v", err)

	require.NoError(t, release())
	require.NotContains(t, fake.keys(), "team/locks/feed.lock")

	release, err = store.Lock(ctx)
	require.NoError(t, err)
	require.NoError(t, release())
}

func TestLockStealsExpiredLock(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	stale := time.Now().Add(-2 * lockTTL).UTC().Format(time.RFC3339)
	fake.put("team/locks/feed.lock", []byte("old"), http.Header{"X-Amz-Meta-Time": {stale}})

	release, err := store.Lock(context.Background())
	require.NoError(t, err)
	require.NoError(t, release())
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := New(config.S3Config{}, http.DefaultClient)
	require.ErrorIs(t, err, errS3BucketIsEmpty)

	_, err = New(config.S3Config{Bucket: "b"}, nil)
	require.ErrorIs(t, err, errS3HTTPClientIsNil)

	_, err = New(config.S3Config{Bucket: "b", Endpoint: "http://"}, http.DefaultClient)
	require.ErrorIs(t, err, errS3InvalidEndpoint)
}

func TestLockExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		headers http.Header
		ttl     time.Duration
		want    bool
		wantErr bool
	}{
		{name: "fresh meta", headers: http.Header{"X-Amz-Meta-Time": {now.Add(-time.Minute).Format(time.RFC3339)}}, ttl: lockTTL},
		{name: "stale meta", headers: http.Header{"X-Amz-Meta-Time": {now.Add(-time.Hour).Format(time.RFC3339)}}, ttl: lockTTL, want: true},
		{name: "last modified", headers: http.Header{"Last-Modified": {now.Add(-time.Hour).Format(http.TimeFormat)}}, ttl: lockTTL, want: true},
		{name: "missing timestamp", headers: http.Header{}, ttl: lockTTL, wantErr: true},
		{name: "invalid ttl", headers: http.Header{}, ttl: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := lockExpired(tt.headers, tt.ttl, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

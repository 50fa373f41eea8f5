package cache_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/cache/cachetest"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

var errAny = errors.New("any error")

func makeLoader(now time.Time) (*cache.LocalFeedLoader, *cachetest.StoreSpy) {
	spy := &cachetest.StoreSpy{}
	return cache.NewLocalFeedLoader(spy, func() time.Time { return now }), spy
}

func expectKinds(t *testing.T, spy *cachetest.StoreSpy, want ...cachetest.MessageKind) {
	t.Helper()
	if got := spy.Kinds(); !slices.Equal(got, want) {
		t.Fatalf("expected messages %v, got %v", want, got)
	}
}

func TestNewLocalFeedLoaderDoesNotMessageStore(t *testing.T) {
	t.Parallel()
	_, spy := makeLoader(time.Now())
	expectKinds(t, spy)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	models, local := cachetest.UniqueModels()

	tests := []struct {
		name      string
		cached    *model.CachedFeed
		err       error
		wantFeed  []model.FeedImage
		wantError bool
	}{
		{name: "retrieval error", err: errAny, wantError: true},
		{name: "empty cache", wantFeed: []model.FeedImage{}},
		{
			name:     "less than seven days old",
			cached:   &model.CachedFeed{Feed: local, Timestamp: now.Add(-helpers.MaxCacheAge + time.Second)},
			wantFeed: models,
		},
		{
			name:     "seven days old",
			cached:   &model.CachedFeed{Feed: local, Timestamp: now.Add(-helpers.MaxCacheAge)},
			wantFeed: []model.FeedImage{},
		},
		{
			name:     "more than seven days old",
			cached:   &model.CachedFeed{Feed: local, Timestamp: now.Add(-helpers.MaxCacheAge - time.Second)},
			wantFeed: []model.FeedImage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sut, spy := makeLoader(now)
			spy.RetrieveResult = tt.cached
			spy.RetrieveErr = tt.err

			feed, err := sut.Load(context.Background())
			if tt.wantError {
				if !errors.Is(err, errAny) {
					t.Fatalf("expected %v, got %v", errAny, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.wantError && !equalFeeds(feed, tt.wantFeed) {
				t.Fatalf("expected feed %#v, got %#v", tt.wantFeed, feed)
			}
			expectKinds(t, spy, cachetest.MessageRetrieve)
		})
	}
}

func TestSaveRequestsDeletionFirst(t *testing.T) {
	t.Parallel()
	sut, spy := makeLoader(time.Now())
	spy.DeleteErr = errAny
	models, _ := cachetest.UniqueModels()

	err := sut.Save(context.Background(), models)
	if !errors.Is(err, errAny) {
		t.Fatalf("expected deletion error, got %v", err)
	}
	expectKinds(t, spy, cachetest.MessageDelete)
}

func TestSaveInsertsWithTimestampAfterDeletion(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	sut, spy := makeLoader(now)
	models, local := cachetest.UniqueModels()

	if err := sut.Save(context.Background(), models); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	expectKinds(t, spy, cachetest.MessageDelete, cachetest.MessageInsert)
	insert := spy.Messages()[1]
	if !insert.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %s, got %s", now, insert.Timestamp)
	}
	if len(insert.Feed) != len(local) || insert.Feed[0].ID != local[0].ID || insert.Feed[1].ID != local[1].ID {
		t.Fatalf("unexpected inserted feed: %#v", insert.Feed)
	}
}

func TestSaveFailsOnInsertionError(t *testing.T) {
	t.Parallel()
	sut, spy := makeLoader(time.Now())
	spy.InsertErr = errAny
	models, _ := cachetest.UniqueModels()

	if err := sut.Save(context.Background(), models); !errors.Is(err, errAny) {
		t.Fatalf("expected insertion error, got %v", err)
	}
}

func TestValidateCache(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	_, local := cachetest.UniqueModels()
	fresh := &model.CachedFeed{Feed: local, Timestamp: now.Add(-helpers.MaxCacheAge + time.Second)}
	expired := &model.CachedFeed{Feed: local, Timestamp: now.Add(-helpers.MaxCacheAge)}

	tests := []struct {
		name        string
		cached      *model.CachedFeed
		retrieveErr error
		deleteErr   error
		wantErr     bool
		wantKinds   []cachetest.MessageKind
	}{
		{
			name:        "deletes on retrieval error",
			retrieveErr: errAny,
			wantKinds:   []cachetest.MessageKind{cachetest.MessageRetrieve, cachetest.MessageDelete},
		},
		{
			name:        "reports deletion error after retrieval error",
			retrieveErr: errAny,
			deleteErr:   errAny,
			wantErr:     true,
			wantKinds:   []cachetest.MessageKind{cachetest.MessageRetrieve, cachetest.MessageDelete},
		},
		{
			name:      "keeps empty cache",
			wantKinds: []cachetest.MessageKind{cachetest.MessageRetrieve},
		},
		{
			name:      "keeps fresh cache",
			cached:    fresh,
			wantKinds: []cachetest.MessageKind{cachetest.MessageRetrieve},
		},
		{
			name:      "deletes expired cache",
			cached:    expired,
			wantKinds: []cachetest.MessageKind{cachetest.MessageRetrieve, cachetest.MessageDelete},
		},
		{
			name:      "reports deletion error on expired cache",
			cached:    expired,
			deleteErr: errAny,
			wantErr:   true,
			wantKinds: []cachetest.MessageKind{cachetest.MessageRetrieve, cachetest.MessageDelete},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sut, spy := makeLoader(now)
			spy.RetrieveResult = tt.cached
			spy.RetrieveErr = tt.retrieveErr
			spy.DeleteErr = tt.deleteErr

			err := sut.ValidateCache(context.Background())
			if tt.wantErr && !errors.Is(err, errAny) {
				t.Fatalf("expected %v, got %v", errAny, err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			expectKinds(t, spy, tt.wantKinds...)
		})
	}
}

func equalFeeds(a, b []model.FeedImage) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].URL.String() != b[i].URL.String() {
			return false
		}
	}
	return true
}

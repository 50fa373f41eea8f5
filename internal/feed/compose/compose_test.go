package compose

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/greeddj/go-zzfeed/internal/feed/cache/cachetest"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

var errStub = errors.New("stub error")

type feedStub struct {
	feed  []model.FeedImage
	err   error
	calls int
}

func (s *feedStub) Load(context.Context) ([]model.FeedImage, error) {
	s.calls++
	return s.feed, s.err
}

type imageStub struct {
	data  []byte
	err   error
	calls int
}

func (s *imageStub) LoadImageData(context.Context, *url.URL) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

type cacheSpy struct {
	saved   [][]model.FeedImage
	images  map[string][]byte
	saveErr error
}

func (c *cacheSpy) Save(_ context.Context, feed []model.FeedImage) error {
	c.saved = append(c.saved, feed)
	return c.saveErr
}

func (c *cacheSpy) SaveImageData(_ context.Context, data []byte, u *url.URL) error {
	if c.images == nil {
		c.images = map[string][]byte{}
	}
	c.images[u.String()] = data
	return c.saveErr
}

func TestFeedLoaderWithFallback(t *testing.T) {
	t.Parallel()

	primaryFeed, _ := cachetest.UniqueModels()
	fallbackFeed, _ := cachetest.UniqueModels()

	cases := []struct {
		name          string
		primary       *feedStub
		fallback      *feedStub
		want          []model.FeedImage
		wantErr       error
		fallbackCalls int
	}{
		{
			name:     "primary success",
			primary:  &feedStub{feed: primaryFeed},
			fallback: &feedStub{feed: fallbackFeed},
			want:     primaryFeed,
		},
		{
			name:          "primary failure uses fallback",
			primary:       &feedStub{err: errStub},
			fallback:      &feedStub{feed: fallbackFeed},
			want:          fallbackFeed,
			fallbackCalls: 1,
		},
		{
			name:          "both fail",
			primary:       &feedStub{err: errors.New("primary")},
			fallback:      &feedStub{err: errStub},
			wantErr:       errStub,
			fallbackCalls: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sut := &FeedLoaderWithFallback{Primary: tc.primary, Fallback: tc.fallback}
			got, err := sut.Load(context.Background())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("unexpected error: got %v want %v", err, tc.wantErr)
			}
			if !slices.Equal(ids(got), ids(tc.want)) {
				t.Fatalf("unexpected feed: got %v want %v", ids(got), ids(tc.want))
			}
			if tc.fallback.calls != tc.fallbackCalls {
				t.Fatalf("fallback called %d times, want %d", tc.fallback.calls, tc.fallbackCalls)
			}
		})
	}
}

func TestFeedLoaderWithFallbackStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fallback := &feedStub{}
	sut := &FeedLoaderWithFallback{Primary: &feedStub{err: errStub}, Fallback: fallback}
	if _, err := sut.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not run after cancel")
	}
}

func TestImageDataLoaderWithFallback(t *testing.T) {
	t.Parallel()

	u := cachetest.AnyURL()

	primary := &imageStub{data: []byte("local")}
	fallback := &imageStub{data: []byte("remote")}
	sut := &ImageDataLoaderWithFallback{Primary: primary, Fallback: fallback}
	data, err := sut.LoadImageData(context.Background(), u)
	if err != nil || string(data) != "local" || fallback.calls != 0 {
		t.Fatalf("expected primary data, got %q, %v (fallback calls %d)", data, err, fallback.calls)
	}

	primary.err = errStub
	data, err = sut.LoadImageData(context.Background(), u)
	if err != nil || string(data) != "remote" {
		t.Fatalf("expected fallback data, got %q, %v", data, err)
	}

	fallback.err = errStub
	if _, err := sut.LoadImageData(context.Background(), u); !errors.Is(err, errStub) {
		t.Fatalf("expected fallback error, got %v", err)
	}
}

func TestFeedLoaderCacheDecorator(t *testing.T) {
	t.Parallel()

	feed, _ := cachetest.UniqueModels()

	t.Run("saves loaded feed", func(t *testing.T) {
		t.Parallel()
		spy := &cacheSpy{}
		sut := &FeedLoaderCacheDecorator{Decoratee: &feedStub{feed: feed}, Cache: spy}
		got, err := sut.Load(context.Background())
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if !slices.Equal(ids(got), ids(feed)) {
			t.Fatalf("unexpected feed")
		}
		if len(spy.saved) != 1 || !slices.Equal(ids(spy.saved[0]), ids(feed)) {
			t.Fatalf("expected one save with loaded feed, got %d", len(spy.saved))
		}
	})

	t.Run("does not save on failure", func(t *testing.T) {
		t.Parallel()
		spy := &cacheSpy{}
		sut := &FeedLoaderCacheDecorator{Decoratee: &feedStub{err: errStub}, Cache: spy}
		if _, err := sut.Load(context.Background()); !errors.Is(err, errStub) {
			t.Fatalf("expected decoratee error, got %v", err)
		}
		if len(spy.saved) != 0 {
			t.Fatalf("unexpected save")
		}
	})

	t.Run("logs save failure", func(t *testing.T) {
		t.Parallel()
		core, logs := observer.New(zapcore.WarnLevel)
		spy := &cacheSpy{saveErr: errStub}
		sut := &FeedLoaderCacheDecorator{Decoratee: &feedStub{feed: feed}, Cache: spy, Log: zap.New(core)}
		got, err := sut.Load(context.Background())
		if err != nil {
			t.Fatalf("save error must not surface, got %v", err)
		}
		if len(got) != len(feed) {
			t.Fatalf("unexpected feed length %d", len(got))
		}
		if logs.FilterMessage("caching loaded feed failed").Len() != 1 {
			t.Fatalf("expected save failure to be logged, got %v", logs.All())
		}
	})
}

func TestImageDataLoaderCacheDecorator(t *testing.T) {
	t.Parallel()

	u := cachetest.AnyURL()

	spy := &cacheSpy{}
	sut := &ImageDataLoaderCacheDecorator{Decoratee: &imageStub{data: []byte("bytes")}, Cache: spy}
	if _, err := sut.LoadImageData(context.Background(), u); err != nil {
		t.Fatalf("LoadImageData returned error: %v", err)
	}
	if string(spy.images[u.String()]) != "bytes" {
		t.Fatalf("expected image to be cached")
	}

	failing := &cacheSpy{saveErr: errStub}
	sut = &ImageDataLoaderCacheDecorator{Decoratee: &imageStub{data: []byte("bytes")}, Cache: failing}
	if data, err := sut.LoadImageData(context.Background(), u); err != nil || string(data) != "bytes" {
		t.Fatalf("save error must not surface, got %q, %v", data, err)
	}

	empty := &cacheSpy{}
	sut = &ImageDataLoaderCacheDecorator{Decoratee: &imageStub{err: errStub}, Cache: empty}
	if _, err := sut.LoadImageData(context.Background(), u); !errors.Is(err, errStub) {
		t.Fatalf("expected decoratee error, got %v", err)
	}
	if len(empty.images) != 0 {
		t.Fatalf("unexpected cached image")
	}
}

func ids(feed []model.FeedImage) []string {
	out := make([]string, 0, len(feed))
	for _, image := range feed {
		out = append(out, image.ID.String())
	}
	return out
}

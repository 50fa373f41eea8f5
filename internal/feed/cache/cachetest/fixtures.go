package cachetest

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// FixedTime is the reference instant used by the suites.
func FixedTime() time.Time {
	return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
}

// URL parses raw and panics on malformed input.
func URL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// AnyURL returns a URL unique to the call.
func AnyURL() *url.URL {
	return URL("https://a-url.com/" + uuid.NewString())
}

// UniqueImage returns a stored image with a fresh identity.
func UniqueImage() model.LocalFeedImage {
	id := uuid.New()
	return model.LocalFeedImage{
		ID:          id,
		Description: "any",
		Location:    "any",
		URL:         URL("https://a-url.com/" + id.String()),
	}
}

// UniqueFeed returns a two-item stored feed.
func UniqueFeed() []model.LocalFeedImage {
	return []model.LocalFeedImage{UniqueImage(), UniqueImage()}
}

// UniqueModels returns a two-item domain feed and its stored counterpart.
func UniqueModels() ([]model.FeedImage, []model.LocalFeedImage) {
	local := UniqueFeed()
	return model.ToModels(local), local
}

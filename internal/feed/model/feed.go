package model

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// FeedImage is a single item of the remote photo feed.
type FeedImage struct {
	ID          uuid.UUID
	Description string
	Location    string
	URL         *url.URL
}

// LocalFeedImage is the storage-side shape of a FeedImage.
type LocalFeedImage struct {
	ID          uuid.UUID
	Description string
	Location    string
	URL         *url.URL
}

// CachedFeed is the whole cache content: the feed and when it was saved.
type CachedFeed struct {
	Feed      []LocalFeedImage
	Timestamp time.Time
}

// ToLocal maps domain images to their storage shape, keeping order.
func ToLocal(feed []FeedImage) []LocalFeedImage {
	local := make([]LocalFeedImage, 0, len(feed))
	for _, image := range feed {
		local = append(local, LocalFeedImage{
			ID:          image.ID,
			Description: image.Description,
			Location:    image.Location,
			URL:         cloneURL(image.URL),
		})
	}
	return local
}

// ToModels maps stored images back to domain images, keeping order.
func ToModels(local []LocalFeedImage) []FeedImage {
	feed := make([]FeedImage, 0, len(local))
	for _, image := range local {
		feed = append(feed, FeedImage{
			ID:          image.ID,
			Description: image.Description,
			Location:    image.Location,
			URL:         cloneURL(image.URL),
		})
	}
	return feed
}

// CloneLocal returns a deep copy of a stored feed.
func CloneLocal(local []LocalFeedImage) []LocalFeedImage {
	if local == nil {
		return nil
	}
	clone := make([]LocalFeedImage, len(local))
	for i, image := range local {
		image.URL = cloneURL(image.URL)
		clone[i] = image
	}
	return clone
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	clone := *u
	if u.User != nil {
		user := *u.User
		clone.User = &user
	}
	return &clone
}

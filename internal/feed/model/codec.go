package model

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDocumentFeedMissing marks a feed document without a feed array.
	ErrDocumentFeedMissing = errors.New("feed document has no feed")
	// ErrDocumentTimestampMissing marks a feed document without a timestamp.
	ErrDocumentTimestampMissing = errors.New("feed document has no timestamp")
)

// StoredImage is the serialized form of a LocalFeedImage shared by the
// document-oriented backends.
type StoredImage struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	ImageURL    string `json:"imageURL"`
}

// Encode converts a LocalFeedImage into its serialized form.
func Encode(image LocalFeedImage) StoredImage {
	stored := StoredImage{
		ID:          image.ID.String(),
		Description: image.Description,
		Location:    image.Location,
	}
	if image.URL != nil {
		stored.ImageURL = image.URL.String()
	}
	return stored
}

// Decode parses a serialized image back into a LocalFeedImage.
func (s StoredImage) Decode() (LocalFeedImage, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return LocalFeedImage{}, fmt.Errorf("invalid image id %q: %w", s.ID, err)
	}
	u, err := url.Parse(s.ImageURL)
	if err != nil {
		return LocalFeedImage{}, fmt.Errorf("invalid image url %q: %w", s.ImageURL, err)
	}
	return LocalFeedImage{
		ID:          id,
		Description: s.Description,
		Location:    s.Location,
		URL:         u,
	}, nil
}

// EncodeFeed serializes a stored feed, keeping order.
func EncodeFeed(feed []LocalFeedImage) []StoredImage {
	out := make([]StoredImage, 0, len(feed))
	for _, image := range feed {
		out = append(out, Encode(image))
	}
	return out
}

// DecodeFeed parses a serialized feed, keeping order.
func DecodeFeed(stored []StoredImage) ([]LocalFeedImage, error) {
	out := make([]LocalFeedImage, 0, len(stored))
	for _, image := range stored {
		decoded, err := image.Decode()
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

// FeedDocument is the single-document layout of a cached feed used by the
// file and object-store backends.
type FeedDocument struct {
	Feed      []StoredImage `json:"feed"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewFeedDocument serializes a feed and its timestamp.
func NewFeedDocument(feed []LocalFeedImage, timestamp time.Time) FeedDocument {
	return FeedDocument{Feed: EncodeFeed(feed), Timestamp: timestamp}
}

// Cached parses the document back into a CachedFeed. A document missing
// either field is corrupt, an empty feed array is not.
func (d FeedDocument) Cached() (*CachedFeed, error) {
	if d.Feed == nil {
		return nil, ErrDocumentFeedMissing
	}
	if d.Timestamp.IsZero() {
		return nil, ErrDocumentTimestampMissing
	}
	feed, err := DecodeFeed(d.Feed)
	if err != nil {
		return nil, err
	}
	return &CachedFeed{Feed: feed, Timestamp: d.Timestamp}, nil
}

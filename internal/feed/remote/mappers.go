package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

var errEmptyBody = errors.New("empty body")

// remoteItem is one entry of the feed API payload.
type remoteItem struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Image       string    `json:"image"`
}

type remoteFeed struct {
	Items []remoteItem `json:"items"`
}

// FeedItemsMapper maps a 200 response carrying {"items":[...]} to feed images.
func FeedItemsMapper(data []byte, resp *http.Response) ([]model.FeedImage, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var payload remoteFeed
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.Items == nil {
		return nil, errors.New(`missing "items"`)
	}
	feed := make([]model.FeedImage, 0, len(payload.Items))
	for i, item := range payload.Items {
		image, err := item.toModel()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		feed = append(feed, image)
	}
	return feed, nil
}

func (i remoteItem) toModel() (model.FeedImage, error) {
	if i.ID == uuid.Nil {
		return model.FeedImage{}, errors.New("missing id")
	}
	u, err := url.Parse(i.Image)
	if err != nil || !u.IsAbs() {
		return model.FeedImage{}, fmt.Errorf("invalid image url %q", i.Image)
	}
	image := model.FeedImage{ID: i.ID, URL: u}
	if i.Description != nil {
		image.Description = *i.Description
	}
	if i.Location != nil {
		image.Location = *i.Location
	}
	return image, nil
}

// ImageDataMapper accepts a 200 response with a non-empty body.
func ImageDataMapper(data []byte, resp *http.Response) ([]byte, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errEmptyBody
	}
	return data, nil
}

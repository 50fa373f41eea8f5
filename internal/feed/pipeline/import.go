package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/infra"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// feedDocument is the import format, shaped like the remote feed payload.
type feedDocument struct {
	Items []feedEntry `json:"items" yaml:"items"`
}

type feedEntry struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Location    string `json:"location" yaml:"location"`
	Image       string `json:"image" yaml:"image"`
}

// Import replaces the cached feed with the one described in a YAML or JSON
// document. The cache timestamp is the import time.
func Import(ctx context.Context, cfg *config.Config, runtime *infra.Infra, docPath string) error {
	return run(runtime, func() error {
		runtime.Output.Printf("🗂️ load feed document %s", docPath)
		feed, err := LoadFeedDocument(docPath)
		if err != nil {
			return fmt.Errorf("failed to load feed document: %w", err)
		}
		return withSession(ctx, cfg, runtime, false, func(s *Session) error {
			if err := s.Loaders.Local.Save(ctx, feed); err != nil {
				return fmt.Errorf("failed to save feed: %w", err)
			}
			runtime.Output.PersistentPrintf("✅ imported %d images", len(feed))
			return nil
		})
	})
}

// LoadFeedDocument parses a feed document, choosing the decoder by extension.
func LoadFeedDocument(docPath string) ([]model.FeedImage, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", helpers.ErrFileIsEmpty, docPath)
	}

	var doc feedDocument
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %s", helpers.ErrUnsupportedFeedFormat, docPath)
	}
	if err != nil {
		return nil, err
	}

	feed := make([]model.FeedImage, 0, len(doc.Items))
	for i, entry := range doc.Items {
		image, err := entry.toModel()
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", helpers.ErrInvalidFeedEntry, i, err)
		}
		feed = append(feed, image)
	}
	return feed, nil
}

func (e feedEntry) toModel() (model.FeedImage, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return model.FeedImage{}, err
	}
	u, err := url.Parse(e.Image)
	if err != nil {
		return model.FeedImage{}, err
	}
	if !u.IsAbs() {
		return model.FeedImage{}, fmt.Errorf("image url %q is not absolute", e.Image)
	}
	return model.FeedImage{
		ID:          id,
		Description: e.Description,
		Location:    e.Location,
		URL:         u,
	}, nil
}

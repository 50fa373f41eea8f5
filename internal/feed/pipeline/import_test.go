package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
)

const yamlDocument = `items:
  - id: 7c2bd5c4-9d1e-4c5e-9a0e-2f2f6d0b9b11
    description: a lake
    location: north
    image: https://cdn.example.com/1.jpg
  - id: 0f5bb0ae-1d0a-4bd3-8d65-41a1b0a7e6d2
    image: https://cdn.example.com/2.jpg
`

const jsonDocument = `{"items":[{"id":"7c2bd5c4-9d1e-4c5e-9a0e-2f2f6d0b9b11","image":"https://cdn.example.com/1.jpg"}]}`

func writeDocument(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return p
}

func TestLoadFeedDocument(t *testing.T) {
	t.Parallel()

	feed, err := LoadFeedDocument(writeDocument(t, "feed.yaml", yamlDocument))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if len(feed) != 2 || feed[0].Description != "a lake" || feed[0].Location != "north" || feed[1].Description != "" {
		t.Fatalf("unexpected yaml feed: %+v", feed)
	}
	if feed[1].ID.String() != secondID {
		t.Fatalf("order not kept: %s", feed[1].ID)
	}

	feed, err = LoadFeedDocument(writeDocument(t, "feed.json", jsonDocument))
	if err != nil || len(feed) != 1 || feed[0].ID.String() != firstID {
		t.Fatalf("unexpected json feed: %+v, %v", feed, err)
	}
}

func TestLoadFeedDocumentErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{name: "empty", file: "feed.yaml", content: "  \n", wantErr: helpers.ErrFileIsEmpty},
		{name: "extension", file: "feed.txt", content: jsonDocument, wantErr: helpers.ErrUnsupportedFeedFormat},
		{name: "bad id", file: "feed.json", content: `{"items":[{"id":"nope","image":"https://x/1.jpg"}]}`, wantErr: helpers.ErrInvalidFeedEntry},
		{name: "relative image", file: "feed.yml", content: "items:\n  - id: " + firstID + "\n    image: /1.jpg\n", wantErr: helpers.ErrInvalidFeedEntry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadFeedDocument(writeDocument(t, tc.file, tc.content))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestImportThenValidate(t *testing.T) {
	t.Parallel()

	cfg := fileConfig(t, "")
	doc := writeDocument(t, "feed.yaml", yamlDocument)
	ctx := context.Background()

	runtime, out := newTestRuntime(nil)
	imported := time.Now().Add(-helpers.MaxCacheAge - time.Minute)
	runtime.Now = func() time.Time { return imported }
	if err := Import(ctx, cfg, runtime, doc); err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if !out.contains("imported 2 images") {
		t.Fatalf("unexpected import output: %v", out.lines)
	}

	runtime, out = newTestRuntime(nil)
	runtime.Now = func() time.Time { return imported }
	if err := Show(ctx, cfg, runtime); err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	if !out.contains(firstID) {
		t.Fatalf("expected imported feed: %v", out.lines)
	}

	runtime, _ = newTestRuntime(nil)
	if err := Validate(ctx, cfg, runtime); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.CacheDir, helpers.StoreFeedFile)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected stale feed document to be removed, got %v", err)
	}
}

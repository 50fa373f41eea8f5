package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/greeddj/go-zzfeed/internal/cache/lockfile"
	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/infra"
)

// Clear wipes everything the configured backend persisted, feed record and
// image blobs alike, and returns how many entries were removed.
func Clear(ctx context.Context, cfg *config.Config, runtime *infra.Infra) (int, error) {
	if cfg == nil {
		return 0, helpers.ErrConfigIsNil
	}
	switch {
	case cfg.Backend == helpers.BackendMemory:
		return 0, nil
	case cfg.Backend == helpers.BackendS3:
		store, err := openS3(ctx, cfg, runtime)
		if err != nil {
			return 0, err
		}
		release, err := store.Lock(ctx)
		if err != nil {
			return 0, err
		}
		removed, err := store.Clear(ctx)
		return removed, errors.Join(err, release())
	case cfg.IsLocal():
		release, err := lockfile.Acquire(cfg.CacheDir)
		if err != nil {
			return 0, err
		}
		removed, err := ClearCacheFiles(cfg.CacheDir)
		return removed, errors.Join(err, release())
	default:
		return 0, helpers.ErrUnsupportedBackend
	}
}

// ClearCacheFiles removes store files from cacheDir, leaving the lock and any
// unrelated files in place.
func ClearCacheFiles(cacheDir string) (int, error) {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !shouldDeleteCacheFile(name, entry.IsDir()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(cacheDir, name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func shouldDeleteCacheFile(name string, isDir bool) bool {
	if isDir {
		return name == helpers.StoreImagesDir
	}
	storeFiles := []string{
		helpers.StoreFeedFile,
		helpers.StoreFeedFileGzip,
		helpers.StoreBoltFile,
		helpers.StoreSQLiteFile,
	}
	if slices.Contains(storeFiles, name) {
		return true
	}
	if strings.HasPrefix(name, helpers.StoreSQLiteFile+"-") {
		return true
	}
	return strings.HasPrefix(name, ".feed-store-")
}

func ensureCacheDir(dir string) error {
	if dir == "" {
		return helpers.ErrCacheDirEmpty
	}
	return os.MkdirAll(dir, helpers.DirMod)
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/greeddj/go-zzfeed/internal/cache/bolt"
	"github.com/greeddj/go-zzfeed/internal/cache/file"
	"github.com/greeddj/go-zzfeed/internal/cache/lockfile"
	"github.com/greeddj/go-zzfeed/internal/cache/memory"
	"github.com/greeddj/go-zzfeed/internal/cache/s3"
	sqlstore "github.com/greeddj/go-zzfeed/internal/cache/sql"
	feedcache "github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/infra"
)

var errHTTPClientNil = errors.New("http client is nil")

// Backend is an opened store together with the lock that guards its medium
// against other processes.
type Backend struct {
	feedcache.Store
	lock func(ctx context.Context) (func() error, error)
}

// Lock acquires the cross-process lock for the backend's medium.
func (b *Backend) Lock(ctx context.Context) (func() error, error) {
	return b.lock(ctx)
}

// New selects, constructs and opens a cache backend based on configuration.
func New(ctx context.Context, cfg *config.Config, runtime *infra.Infra) (*Backend, error) {
	if cfg == nil {
		return nil, helpers.ErrConfigIsNil
	}

	localLock := func(context.Context) (func() error, error) {
		return lockfile.Acquire(cfg.CacheDir)
	}

	switch cfg.Backend {
	case helpers.BackendMemory:
		return &Backend{Store: memory.New(), lock: noLock}, nil
	case helpers.BackendFile:
		store, err := file.NewOS(cfg.CacheDir, cfg.Compress)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, lock: localLock}, nil
	case helpers.BackendBolt:
		if err := ensureCacheDir(cfg.CacheDir); err != nil {
			return nil, err
		}
		store, err := bolt.New(filepath.Join(cfg.CacheDir, helpers.StoreBoltFile))
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, lock: localLock}, nil
	case helpers.BackendSQL:
		if cfg.CacheDir == "" {
			return nil, helpers.ErrCacheDirEmpty
		}
		store, err := sqlstore.NewFile(filepath.Join(cfg.CacheDir, helpers.StoreSQLiteFile))
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, lock: localLock}, nil
	case helpers.BackendS3:
		store, err := openS3(ctx, cfg, runtime)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, lock: store.Lock}, nil
	default:
		return nil, fmt.Errorf("%w: %q", helpers.ErrUnsupportedBackend, cfg.Backend)
	}
}

func openS3(ctx context.Context, cfg *config.Config, runtime *infra.Infra) (*s3.Store, error) {
	if runtime == nil || runtime.HTTP == nil {
		return nil, errHTTPClientNil
	}
	store, err := s3.New(cfg.S3, runtime.HTTP)
	if err != nil {
		return nil, err
	}
	if err := store.Open(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func noLock(context.Context) (func() error, error) {
	return func() error { return nil }, nil
}

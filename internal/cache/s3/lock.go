package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Lock acquires a bucket-level lock object shared by every process using the
// same prefix. An expired lock is stolen.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	lockKey := s.key(locksPrefix, lockObject)
	release := func() error {
		return s.client.deleteObject(context.WithoutCancel(ctx), lockKey)
	}

	err := s.putLock(ctx, lockKey)
	if err == nil {
		return release, nil
	}
	if !errors.Is(err, errS3PreconditionFailed) {
		return nil, err
	}

	headers, err := s.client.headObject(ctx, lockKey)
	switch {
	case errors.Is(err, errS3NotFound):
		// released between our PUT and HEAD
	case err != nil:
		return nil, err
	default:
		expired, err := lockExpired(headers, lockTTL, s.client.now())
		if err != nil {
			return nil, err
		}
		if !expired {
			return nil, fmt.Errorf("%w: %s", errS3LockAlreadyExists, lockKey)
		}
		if err := release(); err != nil {
			return nil, err
		}
	}

	if err := s.putLock(ctx, lockKey); err != nil {
		if errors.Is(err, errS3PreconditionFailed) {
			return nil, fmt.Errorf("%w: %s", errS3LockAlreadyExists, lockKey)
		}
		return nil, err
	}
	return release, nil
}

// putLock writes the lock object only if it does not exist yet.
func (s *Store) putLock(ctx context.Context, lockKey string) error {
	host, _ := os.Hostname()
	now := s.client.now().UTC().Format(time.RFC3339)
	payload := fmt.Sprintf("pid=%d host=%s time=%s\n", os.Getpid(), host, now)
	return s.client.putObject(ctx, request{
		key:         lockKey,
		body:        []byte(payload),
		contentType: "text/plain",
		meta: map[string]string{
			"pid":  strconv.Itoa(os.Getpid()),
			"host": host,
			"time": now,
		},
		ifNoneMatch: true,
	})
}

// lockExpired reports whether the lock is older than ttl at now.
func lockExpired(headers http.Header, ttl time.Duration, now time.Time) (bool, error) {
	if ttl <= 0 {
		return false, errS3LockTTLIsInvalid
	}
	created, err := lockTimestamp(headers)
	if err != nil {
		return false, err
	}
	return now.Sub(created) > ttl, nil
}

// lockTimestamp extracts lock creation time from object metadata.
func lockTimestamp(headers http.Header) (time.Time, error) {
	if value := strings.TrimSpace(headers.Get("X-Amz-Meta-Time")); value != "" {
		return time.Parse(time.RFC3339, value)
	}
	if value := strings.TrimSpace(headers.Get("Last-Modified")); value != "" {
		return http.ParseTime(value)
	}
	return time.Time{}, errS3LockTimestampAbsent
}

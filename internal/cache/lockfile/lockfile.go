// Package lockfile guards a cache directory against concurrent processes with
// an O_EXCL pid file. Locks left by dead processes are taken over.
package lockfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
)

// owner is persisted inside the lock file.
type owner struct {
	PID     int       `json:"pid"`
	Host    string    `json:"host,omitempty"`
	Started time.Time `json:"started"`
}

// Acquire creates the lock file in dir and returns its release func.
func Acquire(dir string) (func() error, error) {
	if dir == "" {
		return nil, helpers.ErrCacheDirEmpty
	}
	if err := os.MkdirAll(dir, helpers.DirMod); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, helpers.StoreLockFile)
	host, _ := os.Hostname()
	payload, err := json.Marshal(&owner{PID: os.Getpid(), Host: host, Started: time.Now().UTC()})
	if err != nil {
		return nil, err
	}

	for {
		created, err := create(path, payload)
		if err != nil {
			return nil, err
		}
		if created {
			return func() error { return release(path, payload) }, nil
		}
		if err := takeOverStale(path); err != nil {
			return nil, err
		}
	}
}

// create writes payload to path only if the file does not exist yet.
func create(path string, payload []byte) (bool, error) {
	//nolint:gosec // path is derived from the cache dir.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, helpers.FileMod)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, writeErr := f.Write(payload)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(path)
		return false, err
	}
	return true, nil
}

// takeOverStale removes the lock when its owner is gone.
func takeOverStale(path string) error {
	//nolint:gosec // path is derived from the cache dir.
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var current owner
	if err := json.Unmarshal(raw, &current); err != nil {
		return fmt.Errorf("lock file %s is invalid: %w", path, err)
	}
	if alive(current.PID) {
		return fmt.Errorf("%w (pid %d)", helpers.ErrAnotherInstanceIsRunning, current.PID)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// release removes the lock file if it still holds our payload.
func release(path string, payload []byte) error {
	//nolint:gosec // path is derived from the cache dir.
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !bytes.Equal(raw, payload) {
		return nil
	}
	return os.Remove(path)
}

// alive reports whether pid is still running.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

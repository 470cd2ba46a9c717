package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// lockArchive takes an exclusive lock on path+".lock" for a command that
// rewrites the archive. Only the OS filesystem is locked; the returned
// function releases the lock and removes the lock file.
func (a *app) lockArchive(path string) (func(), error) {
	if _, ok := a.fsys.(*afero.OsFs); !ok {
		return func() {}, nil
	}
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s is being modified by another process", path)
	}
	a.logger.Debug("locked archive", "path", path)
	return func() {
		if err := fileLock.Unlock(); err != nil {
			a.logger.Warn("unlock failed", "path", lockPath, "error", err)
		}
		os.Remove(lockPath)
	}, nil
}

// Package runlock keeps two makeroom runs from sharing one state directory.
package runlock

import (
	"fmt"

	"github.com/gofrs/flock"

	"makeroom/internal/services"
)

// Lock is a held single-run lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock at path without blocking. A lock held by another
// process is reported as a configuration error.
func Acquire(path string) (*Lock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", fmt.Sprintf("another makeroom run holds %s", path), nil)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}

// Package lock serializes backup invocations against the shared session
// history. Two concurrent backups against the same chain would both decide
// full or fork divergent parent links, so the decide-through-append window
// runs under an exclusive filesystem lock.
package lock

import (
	"errors"

	"github.com/danjacques/gofslock/fslock"
)

// ErrHeld is returned when another backup holds the lock.
var ErrHeld = errors.New("a previous backup is still in progress")

// WithExclusive runs fn while holding an exclusive lock on path. The lock
// is released on every exit path, including when fn fails or panics. The
// acquisition does not block: a held lock fails immediately with ErrHeld.
func WithExclusive(path string, fn func() error) error {
	err := fslock.With(path, fn)
	if errors.Is(err, fslock.ErrLockHeld) {
		return ErrHeld
	}
	return err
}

package lock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jeff-dagenais/tklbam/src/lock"
)

func TestWithExclusive_RunsFn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.lock")
	ran := false
	err := lock.WithExclusive(path, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithExclusive error: %v", err)
	}
	if !ran {
		t.Fatalf("fn did not run")
	}
}

func TestWithExclusive_PropagatesFnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.lock")
	want := errors.New("boom")
	err := lock.WithExclusive(path, func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}

func TestWithExclusive_HeldLockFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.lock")
	err := lock.WithExclusive(path, func() error {
		return lock.WithExclusive(path, func() error {
			t.Fatalf("nested acquisition must not run")
			return nil
		})
	})
	if !errors.Is(err, lock.ErrHeld) {
		t.Fatalf("error = %v, want ErrHeld", err)
	}
}

func TestWithExclusive_ReleasedAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.lock")
	_ = lock.WithExclusive(path, func() error { return errors.New("first run fails") })

	// The lock must be free again even though the previous fn failed.
	err := lock.WithExclusive(path, func() error { return nil })
	if err != nil {
		t.Fatalf("lock not released after failed run: %v", err)
	}
}

package chain_test

import (
	"path/filepath"
	"testing"

	"github.com/jeff-dagenais/tklbam/src/chain"
)

func tempStore(t *testing.T) *chain.FileStore {
	t.Helper()
	return chain.NewFileStore(filepath.Join(t.TempDir(), "sessions.yaml"))
}

func TestFileStore_EmptyHistory(t *testing.T) {
	store := tempStore(t)
	sessions, err := store.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("len = %d, want 0", len(sessions))
	}
}

func TestFileStore_AppendAndReload(t *testing.T) {
	store := tempStore(t)
	full := chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0}
	if err := store.Append(full); err != nil {
		t.Fatalf("Append full: %v", err)
	}
	incr := chain.Session{ID: "B", Type: chain.Incremental, ParentID: "A", CreatedAt: t0.Add(day)}
	if err := store.Append(incr); err != nil {
		t.Fatalf("Append incremental: %v", err)
	}

	reopened := chain.NewFileStore(store.Path)
	sessions, err := reopened.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "A" || sessions[1].ID != "B" {
		t.Fatalf("sessions = %+v, want [A B] in append order", sessions)
	}
	if !sessions[0].CreatedAt.Equal(t0) {
		t.Fatalf("CreatedAt = %v, want %v", sessions[0].CreatedAt, t0)
	}

	got, ok, err := reopened.Get("B")
	if err != nil || !ok {
		t.Fatalf("Get(B) = %v, %v, %v", got, ok, err)
	}
	if got.ParentID != "A" {
		t.Fatalf("ParentID = %q, want A", got.ParentID)
	}
}

func TestFileStore_RejectsDuplicateID(t *testing.T) {
	store := tempStore(t)
	s := chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0}
	if err := store.Append(s); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(s); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestFileStore_RejectsFullWithParent(t *testing.T) {
	store := tempStore(t)
	err := store.Append(chain.Session{ID: "A", Type: chain.Full, ParentID: "X", CreatedAt: t0})
	if err == nil {
		t.Fatalf("expected error for full session with a parent")
	}
}

func TestFileStore_RejectsIncrementalWithUnknownParent(t *testing.T) {
	store := tempStore(t)
	err := store.Append(chain.Session{ID: "B", Type: chain.Incremental, ParentID: "ghost", CreatedAt: t0})
	if err == nil {
		t.Fatalf("expected error for unknown parent")
	}
	// A failed append must leave history unchanged.
	sessions, lerr := store.List()
	if lerr != nil {
		t.Fatalf("List error: %v", lerr)
	}
	if len(sessions) != 0 {
		t.Fatalf("history changed by failed append: %+v", sessions)
	}
}

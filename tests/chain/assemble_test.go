package chain_test

import (
	"errors"
	"testing"

	"github.com/jeff-dagenais/tklbam/src/chain"
)

func TestAssemble_FullChainOrder(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0},
		chain.Session{ID: "B", Type: chain.Incremental, ParentID: "A", CreatedAt: t0.Add(day)},
		chain.Session{ID: "C", Type: chain.Incremental, ParentID: "B", CreatedAt: t0.Add(2 * day)},
	)
	got, err := chain.Assemble(store, "C")
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	if len(ids) != 3 || ids[0] != "A" || ids[1] != "B" || ids[2] != "C" {
		t.Fatalf("Assemble = %v, want [A B C]", ids)
	}
}

func TestAssemble_TargetIsFull(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0},
	)
	got, err := chain.Assemble(store, "A")
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "A" {
		t.Fatalf("Assemble = %v, want [A]", got)
	}
}

func TestAssemble_UnknownTarget(t *testing.T) {
	store := chain.NewMemoryStore()
	_, err := chain.Assemble(store, "nope")
	var integrity *chain.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("error = %v, want *IntegrityError", err)
	}
}

func TestAssemble_MissingLink(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "C", Type: chain.Incremental, ParentID: "ghost", CreatedAt: t0},
	)
	_, err := chain.Assemble(store, "C")
	var integrity *chain.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("error = %v, want *IntegrityError", err)
	}
}

func TestAssemble_CycleNeverLoops(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Incremental, ParentID: "B", CreatedAt: t0},
		chain.Session{ID: "B", Type: chain.Incremental, ParentID: "A", CreatedAt: t0.Add(day)},
	)
	_, err := chain.Assemble(store, "A")
	var integrity *chain.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("error = %v, want *IntegrityError", err)
	}
}

func TestAssemble_RootMustBeFull(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "B", Type: chain.Incremental, CreatedAt: t0},
	)
	_, err := chain.Assemble(store, "B")
	var integrity *chain.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("error = %v, want *IntegrityError", err)
	}
}

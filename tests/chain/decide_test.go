package chain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jeff-dagenais/tklbam/src/chain"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func TestDecide_EmptyHistoryIsFull(t *testing.T) {
	store := chain.NewMemoryStore()
	plan, err := chain.Decide(store, time.Nanosecond, t0)
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if plan.Type != chain.Full {
		t.Fatalf("type = %s, want full", plan.Type)
	}
	if plan.ParentID != "" {
		t.Fatalf("parent = %q, want none", plan.ParentID)
	}
}

func TestDecide_FreshFullYieldsIncremental(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0},
	)
	plan, err := chain.Decide(store, 30*day, t0.Add(29*day))
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if plan.Type != chain.Incremental {
		t.Fatalf("type = %s, want incremental", plan.Type)
	}
	if plan.ParentID != "A" {
		t.Fatalf("parent = %q, want A", plan.ParentID)
	}
}

func TestDecide_StaleFullYieldsFull(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0},
	)
	plan, err := chain.Decide(store, 30*day, t0.Add(31*day))
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if plan.Type != chain.Full {
		t.Fatalf("type = %s, want full", plan.Type)
	}
	if plan.ParentID != "" {
		t.Fatalf("parent = %q, want none", plan.ParentID)
	}
}

func TestDecide_IncrementalChainsOffLatestSession(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0},
		chain.Session{ID: "B", Type: chain.Incremental, ParentID: "A", CreatedAt: t0.Add(day)},
	)
	plan, err := chain.Decide(store, 30*day, t0.Add(2*day))
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if plan.Type != chain.Incremental {
		t.Fatalf("type = %s, want incremental", plan.Type)
	}
	if plan.ParentID != "B" {
		t.Fatalf("parent = %q, want B (latest session, not the full)", plan.ParentID)
	}
}

func TestDecide_MissingParentIsIntegrityError(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0},
		chain.Session{ID: "B", Type: chain.Incremental, ParentID: "ghost", CreatedAt: t0.Add(day)},
	)
	_, err := chain.Decide(store, 30*day, t0.Add(2*day))
	var integrity *chain.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("error = %v, want *IntegrityError", err)
	}
}

func TestDecide_CycleIsIntegrityError(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Incremental, ParentID: "B", CreatedAt: t0},
		chain.Session{ID: "B", Type: chain.Incremental, ParentID: "A", CreatedAt: t0.Add(day)},
	)
	_, err := chain.Decide(store, 30*day, t0.Add(2*day))
	var integrity *chain.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("error = %v, want *IntegrityError", err)
	}
}

func TestDecide_ZeroMaxAgeUsesDefault(t *testing.T) {
	store := chain.NewMemoryStore(
		chain.Session{ID: "A", Type: chain.Full, CreatedAt: t0},
	)
	plan, err := chain.Decide(store, 0, t0.Add(29*day))
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if plan.Type != chain.Incremental {
		t.Fatalf("type = %s, want incremental under the 30 day default", plan.Type)
	}
}

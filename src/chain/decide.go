package chain

import "time"

// DefaultMaxFullAge is how old the newest full session may be before the
// next session is forced to be full again.
const DefaultMaxFullAge = 30 * 24 * time.Hour

// Decide picks the type of the next backup session. If history holds no
// full session, or the newest full is at least maxFullAge old at now, the
// next session is full with no parent. Otherwise it is incremental,
// chained off the most recent session overall so each lineage stays
// linear.
//
// Corrupt history (an incremental referencing a missing parent, or a
// parent cycle) fails with *IntegrityError rather than silently starting
// a new chain.
func Decide(store Store, maxFullAge time.Duration, now time.Time) (Plan, error) {
	sessions, err := store.List()
	if err != nil {
		return Plan{}, err
	}
	if err := checkLineage(sessions); err != nil {
		return Plan{}, err
	}
	if maxFullAge <= 0 {
		maxFullAge = DefaultMaxFullAge
	}

	var lastFull, last *Session
	for i := range sessions {
		s := &sessions[i]
		if last == nil || s.CreatedAt.After(last.CreatedAt) {
			last = s
		}
		if s.Type == Full && (lastFull == nil || s.CreatedAt.After(lastFull.CreatedAt)) {
			lastFull = s
		}
	}

	if lastFull == nil || now.Sub(lastFull.CreatedAt) >= maxFullAge {
		return Plan{Type: Full}, nil
	}
	return Plan{Type: Incremental, ParentID: last.ID}, nil
}

// checkLineage verifies every parent link resolves and no session is its
// own ancestor. Traversals are bounded by the history length.
func checkLineage(sessions []Session) error {
	byID := make(map[string]Session, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}
	for _, s := range sessions {
		seen := map[string]bool{}
		cur := s
		for cur.ParentID != "" {
			if seen[cur.ID] {
				return &IntegrityError{SessionID: s.ID, Reason: "ancestry cycle via " + cur.ID}
			}
			seen[cur.ID] = true
			parent, ok := byID[cur.ParentID]
			if !ok {
				return &IntegrityError{SessionID: cur.ID, Reason: "parent " + cur.ParentID + " not in history"}
			}
			cur = parent
		}
		if cur.Type != Full {
			return &IntegrityError{SessionID: s.ID, Reason: "chain root " + cur.ID + " is not a full session"}
		}
	}
	return nil
}

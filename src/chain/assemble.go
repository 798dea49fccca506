package chain

// Assemble returns the ordered session list a restore of target must
// replay: the chain's full session first, then each incremental down to
// and including the target, consecutive records linked by ParentID.
//
// It fails with *IntegrityError on a cycle, a missing link, or a terminal
// ancestor that is not a full session.
func Assemble(store Store, targetID string) ([]Session, error) {
	target, ok, err := store.Get(targetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &IntegrityError{SessionID: targetID, Reason: "session not in history"}
	}

	var lineage []Session
	seen := map[string]bool{}
	cur := target
	for {
		if seen[cur.ID] {
			return nil, &IntegrityError{SessionID: targetID, Reason: "ancestry cycle via " + cur.ID}
		}
		seen[cur.ID] = true
		lineage = append(lineage, cur)
		if cur.ParentID == "" {
			break
		}
		parent, ok, err := store.Get(cur.ParentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &IntegrityError{SessionID: cur.ID, Reason: "parent " + cur.ParentID + " not in history"}
		}
		cur = parent
	}
	if lineage[len(lineage)-1].Type != Full {
		return nil, &IntegrityError{SessionID: targetID, Reason: "chain root " + lineage[len(lineage)-1].ID + " is not a full session"}
	}

	// Walked child-to-root; restores replay root-to-child.
	for i, j := 0, len(lineage)-1; i < j; i, j = i+1, j-1 {
		lineage[i], lineage[j] = lineage[j], lineage[i]
	}
	return lineage, nil
}

// Package chain tracks backup session lineage: which sessions exist, how
// incrementals chain off their parents, and what ordered sequence of
// sessions a restore has to replay.
package chain

import (
	"fmt"
	"time"
)

// Type is the session type.
type Type string

const (
	Full        Type = "full"
	Incremental Type = "incremental"
)

// ParseType parses a session type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Full, Incremental:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown session type %q", s)
}

// Session is one backup session record. Records are immutable once
// appended; history is append-only. A full session has no parent; an
// incremental's parent must reference an existing session in the same
// chain.
type Session struct {
	ID        string    `yaml:"id"`
	Type      Type      `yaml:"type"`
	ParentID  string    `yaml:"parent_id,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Plan is the decision for the next backup session.
type Plan struct {
	Type     Type
	ParentID string
}

// IntegrityError reports broken lineage: a missing parent link, a cycle,
// or a chain whose root is not a full session. The engine never recovers
// from this silently; the operator decides remediation (typically forcing
// a full backup).
type IntegrityError struct {
	SessionID string
	Reason    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("chain integrity: session %s: %s", e.SessionID, e.Reason)
}

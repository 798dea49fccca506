// Package engine wires selection and chain management together and exposes
// the operations the CLI calls: resolve inclusions, plan the next session,
// run a backup, and plan or run a restore.
package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/jeff-dagenais/tklbam/src/chain"
	"github.com/jeff-dagenais/tklbam/src/lock"
	"github.com/jeff-dagenais/tklbam/src/logging"
	"github.com/jeff-dagenais/tklbam/src/overrides"
	"github.com/jeff-dagenais/tklbam/src/profile"
	"github.com/jeff-dagenais/tklbam/src/resolve"
	"github.com/jeff-dagenais/tklbam/src/transport"
)

// Engine holds the collaborators for one invocation. All fields are
// required except Extra, SkipFiles and SkipDatabase.
type Engine struct {
	Profiles  profile.Provider
	Sessions  chain.Store
	Transport transport.Transport

	// LoadOverrides returns the persisted override list in declaration
	// order, typically overrides.Load on the configured path.
	LoadOverrides func() ([]overrides.Rule, error)

	// Extra holds overrides given on the command line; they apply after
	// the persisted list.
	Extra []overrides.Rule

	// LockPath is the exclusive backup lock file.
	LockPath string

	// MaxFullAge forces a full session when the newest full is older.
	MaxFullAge time.Duration

	SkipFiles    bool
	SkipDatabase bool
}

// ResolveInclusions computes the final backup selection for this run. It
// is deterministic: unchanged baseline and overrides yield an identical
// result.
func (e *Engine) ResolveInclusions() (resolve.Inclusion, error) {
	baseline, source, err := e.Profiles.Baseline()
	if err != nil {
		return resolve.Inclusion{}, err
	}
	if source == profile.SourceCached {
		logging.Info().Str("source", source.String()).Msg("resolving against cached baseline")
	}

	rules, err := e.loadRules()
	if err != nil {
		return resolve.Inclusion{}, err
	}
	inc, err := resolve.Resolve(baseline, rules)
	if err != nil {
		return resolve.Inclusion{}, err
	}
	if e.SkipFiles {
		inc.Paths = nil
	}
	if e.SkipDatabase {
		inc.Databases = nil
		inc.Tables = nil
		inc.ExcludedTables = nil
	}
	return inc, nil
}

// PlanNextSession decides whether the next session is full or incremental
// and which session it chains off. Read-only; it takes no lock.
func (e *Engine) PlanNextSession(now time.Time) (chain.Plan, error) {
	return chain.Decide(e.Sessions, e.MaxFullAge, now)
}

// RestorePlan returns the ordered sessions a restore of target must
// replay, root full first.
func (e *Engine) RestorePlan(targetID string) ([]chain.Session, error) {
	return chain.Assemble(e.Sessions, targetID)
}

// Backup runs one backup session: resolve the selection, decide the
// session type, have the transport materialize the session, then append
// the record. The whole sequence holds the exclusive backup lock, and the
// record is only appended after the transport confirms the session is
// durably stored, so a failed materialization leaves history unchanged.
func (e *Engine) Backup(now time.Time) (chain.Session, error) {
	var session chain.Session
	err := lock.WithExclusive(e.LockPath, func() error {
		inc, err := e.ResolveInclusions()
		if err != nil {
			return err
		}
		plan, err := e.PlanNextSession(now)
		if err != nil {
			return err
		}
		logging.Info().
			Str("type", string(plan.Type)).
			Str("parent", plan.ParentID).
			Msg("starting backup session")

		id, err := e.Transport.MaterializeSession(inc, plan.Type, plan.ParentID, now)
		if err != nil {
			return fmt.Errorf("materialize session: %w", err)
		}
		session = chain.Session{
			ID:        id,
			Type:      plan.Type,
			ParentID:  plan.ParentID,
			CreatedAt: now,
		}
		if err := e.Sessions.Append(session); err != nil {
			return fmt.Errorf("record session %s: %w", id, err)
		}
		logging.Info().Str("session", id).Msg("backup session recorded")
		return nil
	})
	if err != nil {
		return chain.Session{}, err
	}
	return session, nil
}

// Restore fetches the restore chain for target in order and hands each
// session's stream to apply.
func (e *Engine) Restore(targetID string, apply func(chain.Session, io.Reader) error) error {
	plan, err := e.RestorePlan(targetID)
	if err != nil {
		return err
	}
	for _, s := range plan {
		rc, err := e.Transport.FetchSession(s.ID)
		if err != nil {
			return fmt.Errorf("fetch session %s: %w", s.ID, err)
		}
		err = apply(s, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("replay session %s: %w", s.ID, err)
		}
		logging.Info().Str("session", s.ID).Str("type", string(s.Type)).Msg("session replayed")
	}
	return nil
}

func (e *Engine) loadRules() ([]overrides.Rule, error) {
	var rules []overrides.Rule
	if e.LoadOverrides != nil {
		var err error
		rules, err = e.LoadOverrides()
		if err != nil {
			return nil, err
		}
	}
	return append(rules, e.Extra...), nil
}

// Package resolve merges the baseline with user overrides into the final
// backup inclusion sets.
//
// Precedence is last-match-wins over one combined ordered rule list:
// synthetic "include everything in the baseline" rules come first, then the
// user's rules in declaration order. The last rule whose pattern matches a
// candidate decides it. A candidate no rule matches is excluded for
// filesystem targets and included for database targets (databases default
// to include-all until the first positive database or table override flips
// the run to include-only-specified).
package resolve

import (
	"sort"

	"github.com/jeff-dagenais/tklbam/src/overrides"
	"github.com/jeff-dagenais/tklbam/src/pattern"
	"github.com/jeff-dagenais/tklbam/src/profile"
)

// Inclusion is the resolved backup selection for one run. It is computed
// fresh on every invocation and never persisted.
type Inclusion struct {
	Paths     []string        `json:"paths" yaml:"paths"`
	Databases []string        `json:"databases" yaml:"databases"`
	Tables    []profile.Table `json:"tables" yaml:"tables"`

	// ExcludedTables lists tables negatively overridden inside databases
	// that are themselves included, e.g. -mysql:drupal6/sessions.
	ExcludedTables []profile.Table `json:"excluded_tables" yaml:"excluded_tables"`
}

// Resolve applies the override rules to the baseline. Rules apply strictly
// in declaration order. A malformed pattern aborts with
// *overrides.ConfigurationError and no partial result. Overrides naming
// databases or tables absent from the baseline are harmless no-ops.
func Resolve(baseline profile.Baseline, rules []overrides.Rule) (Inclusion, error) {
	var inc Inclusion

	paths, err := resolvePaths(baseline, rules)
	if err != nil {
		return Inclusion{}, err
	}
	inc.Paths = paths

	if err := resolveDatabases(baseline, rules, &inc); err != nil {
		return Inclusion{}, err
	}
	return inc, nil
}

func resolvePaths(baseline profile.Baseline, rules []overrides.Rule) ([]string, error) {
	var pathRules []overrides.Rule
	for _, r := range rules {
		if r.Kind == overrides.Path {
			pathRules = append(pathRules, r)
		}
	}

	// Candidate universe: the baseline paths plus every literal positive
	// override, which is how arbitrary directories outside the baseline
	// get added.
	inBaseline := make(map[string]bool, len(baseline.Paths))
	universe := make(map[string]bool, len(baseline.Paths))
	for _, p := range baseline.Paths {
		inBaseline[p] = true
		universe[p] = true
	}
	for _, r := range pathRules {
		if r.Sign == overrides.Include && pattern.IsLiteral(r.Pattern) {
			universe[r.Pattern] = true
		}
	}

	var out []string
	for cand := range universe {
		included := inBaseline[cand] // synthetic baseline include rule
		for _, r := range pathRules {
			ok, err := pattern.Path(r.Pattern, cand)
			if err != nil {
				return nil, &overrides.ConfigurationError{Line: r.String(), Reason: err.Error()}
			}
			if ok {
				included = r.Sign == overrides.Include
			}
		}
		if included {
			out = append(out, cand)
		}
	}
	sort.Strings(out)
	return out, nil
}

// tableState tracks one table candidate through the rule fold.
type tableState struct {
	included bool
	// byRule is true when the current state was set by an override rule
	// rather than the default policy. Only rule-driven exclusions are
	// reported in ExcludedTables.
	byRule bool
}

func resolveDatabases(baseline profile.Baseline, rules []overrides.Rule, inc *Inclusion) error {
	var dbRules []overrides.Rule
	positive := false
	for _, r := range rules {
		if r.Kind != overrides.Database && r.Kind != overrides.Table {
			continue
		}
		dbRules = append(dbRules, r)
		if r.Sign == overrides.Include {
			positive = true
		}
	}

	// Table candidate universe: the baseline catalog plus literal table
	// rules naming baseline databases. The catalog may not enumerate every
	// table, so a literal rule is trusted to name a real one; if it does
	// not, the entry is a harmless no-op downstream.
	inBaselineDB := make(map[string]bool, len(baseline.Databases))
	for _, db := range baseline.Databases {
		inBaselineDB[db] = true
	}
	tables := make(map[profile.Table]bool, len(baseline.Tables))
	for _, t := range baseline.Tables {
		tables[t] = true
	}
	for _, r := range dbRules {
		if r.Kind == overrides.Table && pattern.IsLiteral(r.DB) && pattern.IsLiteral(r.Tbl) && inBaselineDB[r.DB] {
			tables[profile.Table{Database: r.DB, Name: r.Tbl}] = true
		}
	}

	// Databases: fold rules in order. A database rule decides the database
	// directly; a positive table rule pulls its database in (narrowed to
	// the listed tables), while a negative table rule leaves the database
	// itself alone.
	includedDB := make(map[string]bool, len(baseline.Databases))
	for _, db := range baseline.Databases {
		state := !positive
		for _, r := range dbRules {
			ok, err := pattern.Fragment(r.DB, db)
			if err != nil {
				return &overrides.ConfigurationError{Line: r.String(), Reason: err.Error()}
			}
			if !ok {
				continue
			}
			switch r.Kind {
			case overrides.Database:
				state = r.Sign == overrides.Include
			case overrides.Table:
				if r.Sign == overrides.Include {
					state = true
				}
			}
		}
		if state {
			includedDB[db] = true
			inc.Databases = append(inc.Databases, db)
		}
	}
	sort.Strings(inc.Databases)

	// Tables: same fold; a database rule covers all of that database's
	// tables, a table rule covers exactly the tables it matches.
	for t := range tables {
		st := tableState{included: !positive}
		for _, r := range dbRules {
			dbOK, err := pattern.Fragment(r.DB, t.Database)
			if err != nil {
				return &overrides.ConfigurationError{Line: r.String(), Reason: err.Error()}
			}
			if !dbOK {
				continue
			}
			switch r.Kind {
			case overrides.Database:
				st = tableState{included: r.Sign == overrides.Include, byRule: true}
			case overrides.Table:
				tblOK, err := pattern.Fragment(r.Tbl, t.Name)
				if err != nil {
					return &overrides.ConfigurationError{Line: r.String(), Reason: err.Error()}
				}
				if tblOK {
					st = tableState{included: r.Sign == overrides.Include, byRule: true}
				}
			}
		}
		if !includedDB[t.Database] {
			continue
		}
		if st.included {
			inc.Tables = append(inc.Tables, t)
		} else if st.byRule {
			inc.ExcludedTables = append(inc.ExcludedTables, t)
		}
	}
	sortTables(inc.Tables)
	sortTables(inc.ExcludedTables)
	return nil
}

func sortTables(ts []profile.Table) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Database != ts[j].Database {
			return ts[i].Database < ts[j].Database
		}
		return ts[i].Name < ts[j].Name
	})
}

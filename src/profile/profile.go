// Package profile defines the backup baseline: the machine-generated
// default sets of filesystem paths and database contents eligible for
// backup before user overrides are applied.
package profile

import "time"

// Table identifies one table within a database.
type Table struct {
	Database string `yaml:"database"`
	Name     string `yaml:"name"`
}

// Baseline is the default backup selection for an appliance. It is produced
// externally (package manifest, filesystem index, database catalog) and
// read-only within a run.
type Baseline struct {
	Paths     []string `yaml:"paths"`
	Databases []string `yaml:"databases"`
	Tables    []Table  `yaml:"tables"`
}

// Profile wraps a Baseline with the metadata needed to decide whether a
// newer one exists upstream.
type Profile struct {
	Version   string    `yaml:"version"`
	Timestamp time.Time `yaml:"timestamp"`
	Baseline  Baseline  `yaml:"baseline"`
}

// Source says where a baseline came from. Cached baselines are used
// transparently when the remote source is unreachable.
type Source int

const (
	SourceRemote Source = iota
	SourceCached
)

func (s Source) String() string {
	if s == SourceCached {
		return "cached"
	}
	return "remote"
}

// Provider supplies the baseline for a run.
type Provider interface {
	Baseline() (Baseline, Source, error)
}

// UnavailableError means no baseline could be obtained: the remote source
// failed and no local cache exists.
type UnavailableError struct {
	FetchErr error
}

func (e *UnavailableError) Error() string {
	return "baseline unavailable: no cached profile and remote fetch failed: " + e.FetchErr.Error()
}

func (e *UnavailableError) Unwrap() error { return e.FetchErr }

// Static is a Provider over a fixed in-memory baseline, for tests and for
// the --profile flag pointing at a local profile.
type Static struct {
	B   Baseline
	Src Source
}

func (s Static) Baseline() (Baseline, Source, error) { return s.B, s.Src, nil }

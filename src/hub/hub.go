// Package hub is the client for the remote coordination service that
// distributes baseline profiles and storage credentials. The hub being
// unreachable is an expected condition: callers fall back to cached data
// and keep going, except where a typed error says otherwise.
package hub

import (
	"time"

	"github.com/jeff-dagenais/tklbam/src/profile"
)

// Credentials are the storage credentials the hub provisions for this
// appliance's backup target.
type Credentials struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Address   string `yaml:"address"`
}

// Client is the narrow hub interface the engine consumes. Keep it small so
// it stays fakeable in tests.
type Client interface {
	// GetProfile returns the profile for the appliance version, or nil if
	// the hub has nothing newer than since.
	GetProfile(version string, since time.Time) (*profile.Profile, error)

	// GetCredentials returns storage credentials for this appliance.
	GetCredentials() (Credentials, error)

	// UpdatedBackup tells the hub a backup to address completed.
	UpdatedBackup(address string) error
}

// NotSubscribedError means the hub rejected the account outright. Unlike
// plain unreachability it must not be absorbed by cache fallback.
type NotSubscribedError struct {
	Msg string
}

func (e *NotSubscribedError) Error() string {
	if e.Msg == "" {
		return "hub: account is not subscribed to backups"
	}
	return "hub: " + e.Msg
}

// Fatal marks the error as not recoverable via cached state.
func (e *NotSubscribedError) Fatal() bool { return true }

// UnavailableError means the hub could not be reached. Callers holding
// cached profiles or credentials survive it.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string { return "hub unavailable: " + e.Err.Error() }

func (e *UnavailableError) Unwrap() error { return e.Err }

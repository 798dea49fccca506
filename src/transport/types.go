// Package transport defines the interface to the storage backend that
// materializes and fetches backup sessions. The engine decides what goes
// into a session and how sessions chain; the transport owns volumes,
// encryption, and upload.
package transport

import (
	"io"
	"time"

	"github.com/jeff-dagenais/tklbam/src/chain"
	"github.com/jeff-dagenais/tklbam/src/resolve"
)

// Entry describes one materialized session as seen by the backend, for
// listing.
type Entry struct {
	ID        string
	Type      chain.Type
	Timestamp string // YYYYMMDDThhmmssZ
	Size      uint64 // bytes on the backend
	Path      string // backend-specific location
}

// Transport materializes and fetches sessions. MaterializeSession returns
// the new session's id only after the session is durably stored; the
// engine appends the chain record afterwards, so a failed materialization
// leaves history unchanged.
type Transport interface {
	MaterializeSession(inc resolve.Inclusion, typ chain.Type, parentID string, now time.Time) (string, error)
	FetchSession(id string) (io.ReadCloser, error)
	List() ([]Entry, error)
}

// NotFoundError reports a fetch of a session the backend does not hold.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return "session not found: " + e.ID }

package transport

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jeff-dagenais/tklbam/src/chain"
	"github.com/jeff-dagenais/tklbam/src/resolve"
)

// FakeSession is one session held by the fake backend.
type FakeSession struct {
	ID        string
	Type      chain.Type
	ParentID  string
	Inclusion resolve.Inclusion
	CreatedAt time.Time
	Payload   []byte
}

// Fake is an in-memory Transport for unit tests.
type Fake struct {
	Sessions []FakeSession

	// FailMaterialize makes MaterializeSession fail without recording
	// anything, for exercising the materialize-before-append contract.
	FailMaterialize bool
}

func NewFakeTransport() *Fake {
	return &Fake{}
}

func (f *Fake) MaterializeSession(inc resolve.Inclusion, typ chain.Type, parentID string, now time.Time) (string, error) {
	if f.FailMaterialize {
		return "", fmt.Errorf("materialize session: upload failed")
	}
	s := FakeSession{
		ID:        uuid.NewString(),
		Type:      typ,
		ParentID:  parentID,
		Inclusion: inc,
		CreatedAt: now,
		Payload:   []byte("session " + string(typ)),
	}
	f.Sessions = append(f.Sessions, s)
	return s.ID, nil
}

func (f *Fake) FetchSession(id string) (io.ReadCloser, error) {
	for _, s := range f.Sessions {
		if s.ID == id {
			return io.NopCloser(bytes.NewReader(s.Payload)), nil
		}
	}
	return nil, &NotFoundError{ID: id}
}

func (f *Fake) List() ([]Entry, error) {
	out := make([]Entry, 0, len(f.Sessions))
	for _, s := range f.Sessions {
		out = append(out, Entry{
			ID:        s.ID,
			Type:      s.Type,
			Timestamp: s.CreatedAt.UTC().Format("20060102T150405Z"),
			Size:      uint64(len(s.Payload)),
		})
	}
	return out, nil
}

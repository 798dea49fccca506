package hub

import (
	"time"

	"github.com/jeff-dagenais/tklbam/src/profile"
)

// FakeClient is an in-memory hub for unit tests.
type FakeClient struct {
	Profile     *profile.Profile
	Creds       Credentials
	Down        bool // every call fails with UnavailableError
	Subscribed  bool
	UpdatedAddr []string
}

func NewFake() *FakeClient {
	return &FakeClient{Subscribed: true}
}

func (f *FakeClient) GetProfile(version string, since time.Time) (*profile.Profile, error) {
	if err := f.gate(); err != nil {
		return nil, err
	}
	if f.Profile == nil || !f.Profile.Timestamp.After(since) {
		return nil, nil
	}
	return f.Profile, nil
}

func (f *FakeClient) GetCredentials() (Credentials, error) {
	if err := f.gate(); err != nil {
		return Credentials{}, err
	}
	return f.Creds, nil
}

func (f *FakeClient) UpdatedBackup(address string) error {
	if err := f.gate(); err != nil {
		return err
	}
	f.UpdatedAddr = append(f.UpdatedAddr, address)
	return nil
}

func (f *FakeClient) gate() error {
	if !f.Subscribed {
		return &NotSubscribedError{}
	}
	if f.Down {
		return &UnavailableError{Err: errUnreachable}
	}
	return nil
}

type unreachableError struct{}

func (unreachableError) Error() string { return "connection refused" }

var errUnreachable = unreachableError{}

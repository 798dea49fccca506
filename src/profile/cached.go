package profile

import (
	"errors"
	"time"

	"github.com/jeff-dagenais/tklbam/src/logging"
)

// Fetcher fetches a profile from the remote coordination service.
// GetProfile returns nil when the remote has nothing newer than since.
type Fetcher interface {
	GetProfile(version string, since time.Time) (*Profile, error)
}

// Cache persists the last successfully fetched profile between runs.
// LoadProfile returns nil when no profile has been cached yet.
type Cache interface {
	LoadProfile() (*Profile, error)
	SaveProfile(*Profile) error
}

// fatal marks fetch errors that must not be absorbed by the cache
// fallback, e.g. an account that is no longer subscribed.
type fatal interface {
	Fatal() bool
}

// CachedProvider fetches the baseline remotely and falls back to the local
// cache when the remote source is unreachable. The fallback is degraded
// mode, not an error: callers only see UnavailableError when both the
// remote fetch fails and no cache exists.
type CachedProvider struct {
	Remote  Fetcher
	Cache   Cache
	Version string
}

func (p *CachedProvider) Baseline() (Baseline, Source, error) {
	cached, err := p.Cache.LoadProfile()
	if err != nil {
		logging.Warn().Err(err).Msg("unreadable profile cache, ignoring")
		cached = nil
	}

	var since time.Time
	if cached != nil {
		since = cached.Timestamp
	}

	fresh, err := p.Remote.GetProfile(p.Version, since)
	if err != nil {
		var f fatal
		if errors.As(err, &f) && f.Fatal() {
			return Baseline{}, SourceRemote, err
		}
		if cached == nil {
			return Baseline{}, SourceRemote, &UnavailableError{FetchErr: err}
		}
		logging.Warn().Err(err).Msg("using cached profile because of a hub error")
		return cached.Baseline, SourceCached, nil
	}

	if fresh == nil {
		if cached == nil {
			return Baseline{}, SourceRemote, &UnavailableError{FetchErr: errors.New("remote returned no profile")}
		}
		// Remote confirmed the cached profile is current.
		return cached.Baseline, SourceRemote, nil
	}
	if err := p.Cache.SaveProfile(fresh); err != nil {
		logging.Warn().Err(err).Msg("could not cache profile")
	}
	return fresh.Baseline, SourceRemote, nil
}

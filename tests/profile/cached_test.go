package profile_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jeff-dagenais/tklbam/src/hub"
	"github.com/jeff-dagenais/tklbam/src/profile"
	"github.com/jeff-dagenais/tklbam/src/registry"
)

var testProfile = &profile.Profile{
	Version:   "turnkey-drupal6-16.0",
	Timestamp: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	Baseline: profile.Baseline{
		Paths:     []string{"/etc", "/var/www"},
		Databases: []string{"drupal6"},
	},
}

func newProvider(t *testing.T, hb *hub.FakeClient) (*profile.CachedProvider, *registry.Registry) {
	t.Helper()
	reg := registry.New(t.TempDir())
	return &profile.CachedProvider{
		Remote:  hb,
		Cache:   reg,
		Version: "turnkey-drupal6-16.0",
	}, reg
}

func TestBaseline_RemoteFetchCaches(t *testing.T) {
	hb := hub.NewFake()
	hb.Profile = testProfile
	p, reg := newProvider(t, hb)

	baseline, source, err := p.Baseline()
	if err != nil {
		t.Fatalf("Baseline error: %v", err)
	}
	if source != profile.SourceRemote {
		t.Fatalf("source = %s, want remote", source)
	}
	if !reflect.DeepEqual(baseline, testProfile.Baseline) {
		t.Fatalf("baseline = %+v, want %+v", baseline, testProfile.Baseline)
	}

	cached, err := reg.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile error: %v", err)
	}
	if cached == nil || !reflect.DeepEqual(cached.Baseline, testProfile.Baseline) {
		t.Fatalf("fetched profile was not cached: %+v", cached)
	}
}

func TestBaseline_HubDownFallsBackToCache(t *testing.T) {
	hb := hub.NewFake()
	hb.Profile = testProfile
	p, reg := newProvider(t, hb)
	if err := reg.SaveProfile(testProfile); err != nil {
		t.Fatal(err)
	}

	hb.Down = true
	baseline, source, err := p.Baseline()
	if err != nil {
		t.Fatalf("degraded mode must not fail when a cache exists: %v", err)
	}
	if source != profile.SourceCached {
		t.Fatalf("source = %s, want cached", source)
	}
	if !reflect.DeepEqual(baseline, testProfile.Baseline) {
		t.Fatalf("baseline = %+v, want cached copy", baseline)
	}
}

func TestBaseline_HubDownNoCacheIsUnavailable(t *testing.T) {
	hb := hub.NewFake()
	hb.Down = true
	p, _ := newProvider(t, hb)

	_, _, err := p.Baseline()
	var unavailable *profile.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want *UnavailableError", err)
	}
}

func TestBaseline_NotSubscribedIsFatalDespiteCache(t *testing.T) {
	hb := hub.NewFake()
	hb.Subscribed = false
	p, reg := newProvider(t, hb)
	if err := reg.SaveProfile(testProfile); err != nil {
		t.Fatal(err)
	}

	_, _, err := p.Baseline()
	var notSub *hub.NotSubscribedError
	if !errors.As(err, &notSub) {
		t.Fatalf("error = %v, want *NotSubscribedError passed through", err)
	}
}

func TestBaseline_CacheCurrentWhenRemoteHasNothingNewer(t *testing.T) {
	hb := hub.NewFake()
	hb.Profile = testProfile
	p, reg := newProvider(t, hb)
	if err := reg.SaveProfile(testProfile); err != nil {
		t.Fatal(err)
	}

	baseline, source, err := p.Baseline()
	if err != nil {
		t.Fatalf("Baseline error: %v", err)
	}
	if source != profile.SourceRemote {
		t.Fatalf("source = %s, want remote (hub reachable)", source)
	}
	if !reflect.DeepEqual(baseline, testProfile.Baseline) {
		t.Fatalf("baseline = %+v, want cached copy confirmed current", baseline)
	}
}

// Package registry is tklbam's local state directory: the cached profile
// and credentials, the escrow secret, and the session chain history live
// here between runs.
package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/jeff-dagenais/tklbam/src/hub"
	"github.com/jeff-dagenais/tklbam/src/profile"
)

// Registry reads and writes state files under Dir.
type Registry struct {
	Dir string
}

func New(dir string) *Registry {
	return &Registry{Dir: dir}
}

// Path helpers; callers that need the raw file locations use these.
func (r *Registry) ProfilePath() string     { return filepath.Join(r.Dir, "profile.yaml") }
func (r *Registry) CredentialsPath() string { return filepath.Join(r.Dir, "credentials.yaml") }
func (r *Registry) SecretPath() string      { return filepath.Join(r.Dir, "secret") }
func (r *Registry) SessionsPath() string    { return filepath.Join(r.Dir, "sessions.yaml") }

// LoadProfile returns the cached profile, or nil if none has been cached.
func (r *Registry) LoadProfile() (*profile.Profile, error) {
	var p profile.Profile
	ok, err := r.load(r.ProfilePath(), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SaveProfile caches a freshly fetched profile.
func (r *Registry) SaveProfile(p *profile.Profile) error {
	return r.save(r.ProfilePath(), p, 0o644)
}

// LoadCredentials returns cached storage credentials, or nil.
func (r *Registry) LoadCredentials() (*hub.Credentials, error) {
	var c hub.Credentials
	ok, err := r.load(r.CredentialsPath(), &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// SaveCredentials caches storage credentials. They are secrets, so the
// file is owner-only.
func (r *Registry) SaveCredentials(c *hub.Credentials) error {
	return r.save(r.CredentialsPath(), c, 0o600)
}

func (r *Registry) load(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

func (r *Registry) save(path string, v interface{}, mode os.FileMode) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", path, err)
	}
	return nil
}

package chain

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Store is the persisted session history. Append is the only mutation;
// records are never rewritten or deleted by the engine.
type Store interface {
	// List returns all sessions in append order.
	List() ([]Session, error)
	// Get returns the session with the given id, if present.
	Get(id string) (Session, bool, error)
	// Append adds a new session record. It fails if the id already exists
	// or if an incremental's parent is unknown.
	Append(Session) error
}

// validateAppend enforces the record invariants shared by all stores.
func validateAppend(existing []Session, s Session) error {
	if s.ID == "" {
		return fmt.Errorf("session id must not be empty")
	}
	for _, e := range existing {
		if e.ID == s.ID {
			return fmt.Errorf("session %s already recorded", s.ID)
		}
	}
	switch s.Type {
	case Full:
		if s.ParentID != "" {
			return fmt.Errorf("full session %s must not have a parent", s.ID)
		}
	case Incremental:
		if s.ParentID == "" {
			return &IntegrityError{SessionID: s.ID, Reason: "incremental session has no parent"}
		}
		found := false
		for _, e := range existing {
			if e.ID == s.ParentID {
				found = true
				break
			}
		}
		if !found {
			return &IntegrityError{SessionID: s.ID, Reason: "parent " + s.ParentID + " not in history"}
		}
	default:
		return fmt.Errorf("unknown session type %q", s.Type)
	}
	return nil
}

// FileStore persists the history as a YAML list, rewritten atomically via
// a temp file and rename so a failed append leaves history unchanged.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (fs *FileStore) List() ([]Session, error) {
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session history: %w", err)
	}
	var sessions []Session
	if err := yaml.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse session history: %w", err)
	}
	return sessions, nil
}

func (fs *FileStore) Get(id string) (Session, bool, error) {
	sessions, err := fs.List()
	if err != nil {
		return Session{}, false, err
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, true, nil
		}
	}
	return Session{}, false, nil
}

func (fs *FileStore) Append(s Session) error {
	sessions, err := fs.List()
	if err != nil {
		return err
	}
	if err := validateAppend(sessions, s); err != nil {
		return err
	}
	sessions = append(sessions, s)
	data, err := yaml.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode session history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(fs.Path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := fs.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session history: %w", err)
	}
	if err := os.Rename(tmp, fs.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit session history: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	Sessions []Session
}

func NewMemoryStore(sessions ...Session) *MemoryStore {
	return &MemoryStore{Sessions: sessions}
}

func (ms *MemoryStore) List() ([]Session, error) {
	out := make([]Session, len(ms.Sessions))
	copy(out, ms.Sessions)
	return out, nil
}

func (ms *MemoryStore) Get(id string) (Session, bool, error) {
	for _, s := range ms.Sessions {
		if s.ID == id {
			return s, true, nil
		}
	}
	return Session{}, false, nil
}

func (ms *MemoryStore) Append(s Session) error {
	if err := validateAppend(ms.Sessions, s); err != nil {
		return err
	}
	ms.Sessions = append(ms.Sessions, s)
	return nil
}

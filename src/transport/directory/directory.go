// Package directory implements the transport over a local directory tree,
// the dir: address scheme. It is the backend used for manual targets and
// for inspecting what a backup would ship.
//
// Layout: <root>/sessions/<timestamp>-<type>/ holding manifest.json,
// payload.json and checksums.txt. The volume pipeline proper (chunking,
// encryption, upload) belongs to the remote transport and is out of scope
// here; the payload records the resolved selection the session covers.
package directory

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jeff-dagenais/tklbam/src/chain"
	"github.com/jeff-dagenais/tklbam/src/resolve"
	"github.com/jeff-dagenais/tklbam/src/transport"
)

// Manifest captures the metadata of one materialized session.
type Manifest struct {
	ID        string     `json:"id"`
	Type      chain.Type `json:"type"`
	ParentID  string     `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Backend implements transport.Transport over a directory tree.
type Backend struct {
	Root string // absolute directory path
}

func New(root string) (*Backend, error) {
	if root == "" {
		return nil, errors.New("directory transport root must not be empty")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}
	return &Backend{Root: root}, nil
}

func (b *Backend) MaterializeSession(inc resolve.Inclusion, typ chain.Type, parentID string, now time.Time) (string, error) {
	id := uuid.NewString()
	ts := now.UTC().Format("20060102T150405Z")
	snapDir := filepath.Join(b.Root, "sessions", fmt.Sprintf("%s-%s", ts, typ))
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		return "", err
	}

	mf := Manifest{ID: id, Type: typ, ParentID: parentID, CreatedAt: now.UTC()}
	if err := writeJSON(filepath.Join(snapDir, "manifest.json"), mf); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(snapDir, "payload.json"), inc); err != nil {
		return "", err
	}
	if err := writeChecksums(snapDir, []string{"manifest.json", "payload.json"}); err != nil {
		return "", err
	}
	return id, nil
}

func (b *Backend) FetchSession(id string) (io.ReadCloser, error) {
	dir, _, err := b.find(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, "payload.json"))
	if err != nil {
		return nil, fmt.Errorf("open session payload: %w", err)
	}
	return f, nil
}

func (b *Backend) List() ([]transport.Entry, error) {
	base := filepath.Join(b.Root, "sessions")
	names, err := readDirNames(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []transport.Entry
	for _, name := range names {
		dir := filepath.Join(base, name)
		mf, err := readManifest(dir)
		if err != nil {
			return nil, err
		}
		size, err := dirSize(dir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, transport.Entry{
			ID:        mf.ID,
			Type:      mf.Type,
			Timestamp: mf.CreatedAt.UTC().Format("20060102T150405Z"),
			Size:      size,
			Path:      dir,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp < entries[j].Timestamp
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (b *Backend) find(id string) (string, Manifest, error) {
	base := filepath.Join(b.Root, "sessions")
	names, err := readDirNames(base)
	if err != nil {
		if os.IsNotExist(err) {
			return "", Manifest{}, &transport.NotFoundError{ID: id}
		}
		return "", Manifest{}, err
	}
	for _, name := range names {
		dir := filepath.Join(base, name)
		mf, err := readManifest(dir)
		if err != nil {
			return "", Manifest{}, err
		}
		if mf.ID == id {
			return dir, mf, nil
		}
	}
	return "", Manifest{}, &transport.NotFoundError{ID: id}
}

func readManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var mf Manifest
	if err := json.Unmarshal(data, &mf); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest in %s: %w", dir, err)
	}
	return mf, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeChecksums(dir string, files []string) error {
	out, err := os.Create(filepath.Join(dir, "checksums.txt"))
	if err != nil {
		return err
	}
	defer out.Close()
	for _, name := range files {
		sum, err := sha256File(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%s  %s\n", sum, name); err != nil {
			return err
		}
	}
	return nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func dirSize(dir string) (uint64, error) {
	var total uint64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += uint64(info.Size())
		}
		return nil
	})
	return total, err
}

func readDirNames(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

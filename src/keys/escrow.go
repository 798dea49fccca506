// Package keys manages the escrow key: locally generated random key
// material that encrypts backup contents, independent of any passphrase.
// Whoever holds the escrow key can decrypt the backup, so it lives 0600 in
// the registry and is only ever transmitted by explicit operator action.
package keys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const keySize = 32 // 256-bit

// Key is escrow key material.
type Key []byte

// New generates a fresh random escrow key.
func New() (Key, error) {
	k := make(Key, keySize)
	if _, err := rand.Read(k); err != nil {
		return nil, fmt.Errorf("generate escrow key: %w", err)
	}
	return k, nil
}

// Fingerprint returns a short stable identifier for display and for
// matching a key against a backup record, without revealing key material.
func (k Key) Fingerprint() string {
	sum := sha256.Sum256(k)
	return hex.EncodeToString(sum[:8])
}

// String encodes the key for storage.
func (k Key) String() string {
	return base64.StdEncoding.EncodeToString(k)
}

// Parse decodes a stored key.
func Parse(s string) (Key, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode escrow key: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("escrow key is %d bytes, want %d", len(raw), keySize)
	}
	return Key(raw), nil
}

// Load reads the escrow key at path, generating and persisting a new one
// if none exists yet.
func Load(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return Parse(string(data))
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read escrow key: %w", err)
	}
	k, err := New()
	if err != nil {
		return nil, err
	}
	if err := Save(path, k); err != nil {
		return nil, err
	}
	return k, nil
}

// Save writes the key with owner-only permissions.
func Save(path string, k Key) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(k.String()+"\n"), 0o600); err != nil {
		return fmt.Errorf("write escrow key: %w", err)
	}
	return nil
}

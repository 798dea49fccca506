// Package target parses backup address URIs. Addresses normally come from
// the hub; --address overrides them for manual targets.
package target

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Target is a parsed backup address.
// Example: dir:/var/backups/tklbam
type Target struct {
	// Raw is the original input string.
	Raw string
	// Scheme is the backend scheme, e.g. "dir" or "s3".
	Scheme string
	// Value is the scheme-specific remainder. For dir this is a cleaned
	// absolute path.
	Value string
}

// SupportedSchemes lists the schemes the parser accepts. Only dir is
// materialized locally; s3 addresses are handed to the remote transport
// as-is.
var SupportedSchemes = map[string]struct{}{
	"dir": {},
	"s3":  {},
}

// Parse parses an address like "dir:/path" or "s3://host/bucket".
func Parse(raw string) (Target, error) {
	t := Target{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return t, fmt.Errorf("address must not be empty; expected format '<scheme>:<value>'")
	}
	i := strings.Index(s, ":")
	if i <= 0 || i == len(s)-1 {
		return t, fmt.Errorf("invalid address %q; expected format '<scheme>:<value>' (e.g., 'dir:/path')", raw)
	}
	scheme := strings.ToLower(strings.TrimSpace(s[:i]))
	val := strings.TrimSpace(s[i+1:])
	if _, ok := SupportedSchemes[scheme]; !ok {
		return t, fmt.Errorf("unsupported address scheme %q", scheme)
	}
	t.Scheme = scheme
	t.Value = val

	if scheme == "dir" {
		clean := filepath.Clean(val)
		if !filepath.IsAbs(clean) {
			return t, fmt.Errorf("directory address must be an absolute path: %q", val)
		}
		t.Value = clean
	}
	return t, nil
}

// IsSupported returns true if the scheme is recognized.
func IsSupported(scheme string) bool {
	_, ok := SupportedSchemes[strings.ToLower(scheme)]
	return ok
}

// String returns the canonical string form of the address.
func (t Target) String() string {
	if t.Scheme != "" {
		return fmt.Sprintf("%s:%s", t.Scheme, t.Value)
	}
	return t.Raw
}

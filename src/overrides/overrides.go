// Package overrides parses and formats the user override list that adds or
// removes filesystem paths, databases, and tables from the backup baseline.
//
// The on-disk format is line oriented and must be preserved exactly:
//
//	/path/to/include
//	-/path/to/exclude
//	mysql:dbname
//	-mysql:dbname/tablename
//
// Blank lines and lines starting with '#' are ignored. A leading '-' means
// exclude; its absence means include.
package overrides

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeff-dagenais/tklbam/src/pattern"
)

// Sign says whether a rule adds or removes matching targets.
type Sign int

const (
	Include Sign = iota
	Exclude
)

// Kind identifies what a rule's pattern applies to.
type Kind int

const (
	Path Kind = iota
	Database
	Table
)

const mysqlPrefix = "mysql:"

// Rule is one override entry. Rules are immutable once loaded; declaration
// order decides precedence (last matching rule wins).
type Rule struct {
	Sign Sign
	Kind Kind

	// Pattern is the path glob for Kind == Path.
	Pattern string

	// DB and Tbl are the glob segments for database and table rules.
	// Tbl is empty for Kind == Database.
	DB, Tbl string
}

// String renders the rule in the override file syntax, byte for byte.
func (r Rule) String() string {
	var b strings.Builder
	if r.Sign == Exclude {
		b.WriteByte('-')
	}
	switch r.Kind {
	case Path:
		b.WriteString(r.Pattern)
	case Database:
		b.WriteString(mysqlPrefix)
		b.WriteString(r.DB)
	case Table:
		b.WriteString(mysqlPrefix)
		b.WriteString(r.DB)
		b.WriteByte('/')
		b.WriteString(r.Tbl)
	}
	return b.String()
}

// ConfigurationError reports a malformed override line or glob pattern.
// Resolution aborts without producing a partial result.
type ConfigurationError struct {
	Line   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Line == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error in override %q: %s", e.Line, e.Reason)
}

// ParseRule parses a single override entry such as "-/srv" or
// "mysql:drupal6/sessions".
func ParseRule(s string) (Rule, error) {
	raw := s
	var r Rule
	if strings.HasPrefix(s, "-") {
		r.Sign = Exclude
		s = s[1:]
	}
	if s == "" {
		return Rule{}, &ConfigurationError{Line: raw, Reason: "empty override"}
	}
	if strings.HasPrefix(s, mysqlPrefix) {
		spec := s[len(mysqlPrefix):]
		if spec == "" {
			return Rule{}, &ConfigurationError{Line: raw, Reason: "missing database name"}
		}
		db, tbl, hasTbl := strings.Cut(spec, "/")
		if db == "" {
			return Rule{}, &ConfigurationError{Line: raw, Reason: "missing database name"}
		}
		if hasTbl && (tbl == "" || strings.Contains(tbl, "/")) {
			return Rule{}, &ConfigurationError{Line: raw, Reason: "expected mysql:database[/table]"}
		}
		for _, seg := range []string{db, tbl} {
			if seg == "" {
				continue
			}
			if err := pattern.Validate(seg); err != nil {
				return Rule{}, &ConfigurationError{Line: raw, Reason: err.Error()}
			}
		}
		if hasTbl {
			r.Kind, r.DB, r.Tbl = Table, db, tbl
		} else {
			r.Kind, r.DB = Database, db
		}
		return r, nil
	}
	if err := pattern.Validate(s); err != nil {
		return Rule{}, &ConfigurationError{Line: raw, Reason: err.Error()}
	}
	r.Kind = Path
	r.Pattern = s
	return r, nil
}

// Parse reads an override list from r, one entry per line, preserving
// declaration order.
func Parse(r io.Reader) ([]Rule, error) {
	var rules []Rule
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := ParseRule(line)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	return rules, nil
}

// Load reads the override file at path. A missing file is an empty list,
// not an error: overrides are optional.
func Load(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open overrides: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Format renders rules back to the override file syntax.
func Format(rules []Rule) string {
	var b strings.Builder
	for _, r := range rules {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}

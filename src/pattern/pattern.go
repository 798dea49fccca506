// Package pattern evaluates shell-glob patterns against filesystem paths
// and database identifiers.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar"
)

// Path reports whether a filesystem glob pattern matches a candidate path.
// Wildcards follow shell fnmatch semantics: '*' matches any run of
// characters including '/', '?' matches one character, '[...]' matches a
// character class. A pattern that matches an ancestor directory of the
// candidate also matches the candidate, so including or excluding a
// directory covers its whole subtree.
//
// A malformed pattern (unterminated character class) is reported as an
// error.
func Path(pat, candidate string) (bool, error) {
	re, err := compile(pat)
	if err != nil {
		return false, err
	}
	if re.MatchString(candidate) {
		return true, nil
	}
	for _, anc := range ancestors(candidate) {
		if re.MatchString(anc) {
			return true, nil
		}
	}
	return false, nil
}

// Fragment reports whether a glob pattern matches a single database or
// table name segment. Segments never contain '/'.
func Fragment(pat, segment string) (bool, error) {
	ok, err := doublestar.Match(pat, segment)
	if err != nil {
		return false, fmt.Errorf("bad pattern %q: %w", pat, err)
	}
	return ok, nil
}

// Validate returns an error if the pattern is not a well-formed glob.
func Validate(pat string) error {
	_, err := compile(pat)
	return err
}

// IsLiteral reports whether the pattern contains no glob metacharacters,
// i.e. it names exactly one candidate.
func IsLiteral(pat string) bool {
	return !strings.ContainsAny(pat, "*?[")
}

// ancestors returns the proper ancestor directories of a path, nearest
// first: "/a/b/c" -> ["/a/b", "/a"].
func ancestors(p string) []string {
	p = strings.TrimSuffix(p, "/")
	var out []string
	for {
		i := strings.LastIndex(p, "/")
		if i <= 0 {
			return out
		}
		p = p[:i]
		out = append(out, p)
	}
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*regexp.Regexp{}
)

// compile translates a glob into an anchored regular expression. Compiled
// patterns are cached; rule lists reuse the same few patterns across many
// candidates.
func compile(pat string) (*regexp.Regexp, error) {
	cacheMu.Lock()
	re, ok := cache[pat]
	cacheMu.Unlock()
	if ok {
		return re, nil
	}
	expr, err := translate(pat)
	if err != nil {
		return nil, err
	}
	re, err = regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pat, err)
	}
	cacheMu.Lock()
	cache[pat] = re
	cacheMu.Unlock()
	return re, nil
}

// translate converts a shell glob to regexp syntax.
func translate(pat string) (string, error) {
	var b strings.Builder
	b.WriteString(`\A`)
	for i := 0; i < len(pat); i++ {
		switch c := pat[i]; c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			j := i + 1
			if j < len(pat) && (pat[j] == '!' || pat[j] == '^') {
				j++
			}
			if j < len(pat) && pat[j] == ']' {
				j++
			}
			for j < len(pat) && pat[j] != ']' {
				j++
			}
			if j >= len(pat) {
				return "", fmt.Errorf("bad pattern %q: %w", pat, doublestar.ErrBadPattern)
			}
			class := pat[i+1 : j]
			b.WriteByte('[')
			if strings.HasPrefix(class, "!") {
				b.WriteByte('^')
				class = class[1:]
			}
			b.WriteString(strings.ReplaceAll(class, `\`, `\\`))
			b.WriteByte(']')
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`\z`)
	return b.String(), nil
}

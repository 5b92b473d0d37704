package hooks

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// Matcher decides whether a rule applies to an invoked tool. A matcher is
// either the wildcard ("*" or empty, matches everything), a single token, or
// a pipe-separated set of tokens combined as a logical OR. Tokens match the
// tool name exactly and case-sensitively; glob metacharacters inside a token
// (e.g. "mcp__*") are honored.
type Matcher struct {
	raw   string
	globs []glob.Glob
}

// CompileMatcher parses a matcher pattern.
func CompileMatcher(pattern string) (Matcher, error) {
	m := Matcher{raw: pattern}

	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" || trimmed == "*" {
		return m, nil
	}

	for _, token := range strings.Split(trimmed, "|") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		g, err := glob.Compile(token)
		if err != nil {
			return Matcher{}, errors.Wrapf(err, "invalid matcher token %q", token)
		}
		m.globs = append(m.globs, g)
	}

	return m, nil
}

// Matches reports whether the matcher applies to the tool name.
func (m Matcher) Matches(toolName string) bool {
	if len(m.globs) == 0 {
		return true
	}
	for _, g := range m.globs {
		if g.Match(toolName) {
			return true
		}
	}
	return false
}

// String returns the original pattern.
func (m Matcher) String() string {
	return m.raw
}

package resolver

import (
	"path"
	"path/filepath"
	"strings"
)

// Matcher tests whether a candidate path belongs to a resolver. It is built
// from an ordered list of glob patterns, each implicitly anchored to match at
// any directory depth: a pattern matches any path whose trailing components
// match the pattern.
type Matcher struct {
	patterns []string
}

// NewMatcher compiles the glob patterns into a matcher. A syntactically
// invalid pattern yields a *ConfigurationError.
func NewMatcher(globs []string) (*Matcher, error) {
	for _, g := range globs {
		if _, err := path.Match(g, ""); err != nil {
			return nil, &ConfigurationError{Pattern: g, Message: "invalid glob pattern"}
		}
	}
	return &Matcher{patterns: append([]string(nil), globs...)}, nil
}

// Matches reports whether any pattern matches the path. It short-circuits on
// the first match and does not report which pattern matched.
func (m *Matcher) Matches(p string) bool {
	for _, pattern := range m.patterns {
		if matchAtAnyDepth(pattern, p) {
			return true
		}
	}
	return false
}

// matchAtAnyDepth matches the pattern against the trailing components of p,
// so "package.json" matches both "package.json" and "/a/b/package.json".
func matchAtAnyDepth(pattern, p string) bool {
	p = filepath.ToSlash(p)
	want := strings.Count(pattern, "/") + 1

	parts := strings.Split(p, "/")
	if len(parts) < want {
		return false
	}

	suffix := strings.Join(parts[len(parts)-want:], "/")
	ok, err := path.Match(pattern, suffix)
	return err == nil && ok
}

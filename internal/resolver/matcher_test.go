package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatcher_InvalidPattern(t *testing.T) {
	_, err := NewMatcher([]string{"package.json", "[invalid"})
	require.Error(t, err)

	var cerr *ConfigurationError
	require.True(t, errors.As(err, &cerr), "expected *ConfigurationError, got %T", err)
	assert.Equal(t, "[invalid", cerr.Pattern)
}

func TestMatcher_Matches(t *testing.T) {
	tests := []struct {
		name  string
		globs []string
		path  string
		want  bool
	}{
		{
			name:  "exact file name",
			globs: []string{"package.json"},
			path:  "package.json",
			want:  true,
		},
		{
			name:  "any depth",
			globs: []string{"package.json"},
			path:  "/home/user/project/package.json",
			want:  true,
		},
		{
			name:  "suffix must be a whole component",
			globs: []string{"package.json"},
			path:  "/a/not-package.json",
			want:  false,
		},
		{
			name:  "wildcard within component",
			globs: []string{"build.gradle*"},
			path:  "/x/build.gradle.kts",
			want:  true,
		},
		{
			name:  "multi-component pattern",
			globs: []string{".mvn/extensions.xml"},
			path:  "/repo/.mvn/extensions.xml",
			want:  true,
		},
		{
			name:  "multi-component pattern requires both components",
			globs: []string{".mvn/extensions.xml"},
			path:  "/repo/extensions.xml",
			want:  false,
		},
		{
			name:  "second pattern matches",
			globs: []string{"build.gradle", "build.gradle.kts"},
			path:  "/x/build.gradle.kts",
			want:  true,
		},
		{
			name:  "no match",
			globs: []string{"go.mod"},
			path:  "/a/go.sum",
			want:  false,
		},
		{
			name:  "pattern longer than path",
			globs: []string{"conf/app/settings.yml"},
			path:  "settings.yml",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.globs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Matches(tt.path), "Matches(%q)", tt.path)
		})
	}
}

func TestMatcher_SuffixEqualityAlwaysMatches(t *testing.T) {
	// Any path whose suffix equals one of the patterns matches at any depth.
	globs := []string{"package.json", "go.mod", "requirements.txt"}
	m, err := NewMatcher(globs)
	require.NoError(t, err)

	prefixes := []string{"", "/a/", "/a/b/", "relative/nested/"}
	for _, g := range globs {
		for _, prefix := range prefixes {
			assert.True(t, m.Matches(prefix+g), "Matches(%q)", prefix+g)
		}
	}
}

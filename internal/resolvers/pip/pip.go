// Package pip resolves pip requirements files (requirements.txt).
package pip

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/pkg/depgraph"
)

// Resolver resolves requirements.txt files without invoking pip.
type Resolver struct {
	resolver.NoPreparation
}

// New creates the pip resolver.
func New() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Details() resolver.Details {
	return resolver.Details{
		Name:     "PIP",
		Homepage: "https://pip.pypa.io/",
		Language: "python",
		Globs:    []string{"requirements.txt"},
	}
}

func (r *Resolver) Command(string) string {
	return "pip"
}

// requirement operators, longest first so "==" wins over "=".
var operators = []string{"===", "==", "~=", "!=", ">=", "<=", ">", "<"}

func (r *Resolver) ResolveOne(_ context.Context, _, _, definitionFile string, result resolver.Result) error {
	data, err := os.ReadFile(definitionFile)
	if err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	g := depgraph.New(definitionFile)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			// Options and file includes (-r, --index-url, ...) are not
			// requirements.
			continue
		}
		// Environment markers don't affect identity.
		if i := strings.Index(line, ";"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		name, version := splitRequirement(line)
		if name == "" {
			continue
		}

		g.AddPackage(depgraph.Package{
			Name:    name,
			Version: version,
			Type:    "pip",
			Scope:   "main",
		})
	}
	if err := scanner.Err(); err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	result.Add(definitionFile, g)
	return nil
}

// splitRequirement splits "requests[security]==2.31.0" into ("requests",
// "2.31.0"). Requirements without a pin keep their raw specifier, or an
// empty version for bare names.
func splitRequirement(line string) (name, version string) {
	for _, op := range operators {
		if i := strings.Index(line, op); i >= 0 {
			name = strings.TrimSpace(line[:i])
			version = strings.TrimSpace(line[i+len(op):])
			if op == "==" {
				version = normalizePin(version)
			} else {
				version = op + version
			}
			return stripExtras(name), version
		}
	}
	return stripExtras(strings.TrimSpace(line)), ""
}

// stripExtras removes extras markers: "requests[security]" -> "requests".
func stripExtras(name string) string {
	if i := strings.Index(name, "["); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}

// normalizePin canonicalizes exact pins where they are valid semver.
// PEP 440 versions that aren't semver (e.g. "2.31" or "1.0.post1") are
// kept verbatim.
func normalizePin(version string) string {
	if v, err := semver.NewVersion(version); err == nil {
		return v.String()
	}
	return version
}

// Package npm resolves npm definition files (package.json).
package npm

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/pkg/depgraph"
)

// Resolver resolves package.json files without invoking npm.
type Resolver struct {
	resolver.NoPreparation
}

// New creates the npm resolver.
func New() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Details() resolver.Details {
	return resolver.Details{
		Name:     "NPM",
		Homepage: "https://www.npmjs.com/",
		Language: "javascript",
		Globs:    []string{"package.json"},
	}
}

func (r *Resolver) Command(string) string {
	return "npm"
}

// manifest mirrors the package.json fields this resolver reads.
type manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (r *Resolver) ResolveOne(_ context.Context, _, _, definitionFile string, result resolver.Result) error {
	data, err := os.ReadFile(definitionFile)
	if err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	g := depgraph.New(definitionFile)
	addScope(g, m.Dependencies, "main")
	addScope(g, m.DevDependencies, "dev")

	result.Add(definitionFile, g)
	return nil
}

func addScope(g *depgraph.Graph, deps map[string]string, scope string) {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		namespace := ""
		unscoped := name
		if strings.HasPrefix(name, "@") {
			if i := strings.Index(name, "/"); i > 0 {
				namespace = name[:i]
				unscoped = name[i+1:]
			}
		}

		g.AddPackage(depgraph.Package{
			Name:      unscoped,
			Namespace: namespace,
			Version:   normalizeRequirement(deps[name]),
			Type:      "npm",
			Scope:     scope,
		})
	}
}

// normalizeRequirement canonicalizes exact version pins ("v1.2" -> "1.2.0").
// Ranges, tags, and aliases are kept verbatim.
func normalizeRequirement(req string) string {
	req = strings.TrimSpace(req)
	if v, err := semver.NewVersion(req); err == nil {
		return v.String()
	}
	return req
}

// Package gomod resolves Go module definition files (go.mod).
package gomod

import (
	"context"
	"os"
	"strings"

	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/pkg/depgraph"
	"golang.org/x/mod/modfile"
)

// Resolver resolves go.mod files without invoking the go tool.
type Resolver struct {
	resolver.NoPreparation
}

// New creates the Go modules resolver.
func New() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Details() resolver.Details {
	return resolver.Details{
		Name:     "GoMod",
		Homepage: "https://go.dev/ref/mod",
		Language: "go",
		Globs:    []string{"go.mod"},
	}
}

// Command returns the Go tool. The same binary serves every working
// directory.
func (r *Resolver) Command(string) string {
	return "go"
}

func (r *Resolver) ResolveOne(_ context.Context, _, _, definitionFile string, result resolver.Result) error {
	data, err := os.ReadFile(definitionFile)
	if err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	f, err := modfile.ParseLax(definitionFile, data, nil)
	if err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	g := depgraph.New(definitionFile)
	for _, req := range f.Require {
		scope := "main"
		if req.Indirect {
			scope = "indirect"
		}

		namespace, name := splitModulePath(req.Mod.Path)
		g.AddPackage(depgraph.Package{
			Name:      name,
			Namespace: namespace,
			Version:   req.Mod.Version,
			Type:      "go",
			Scope:     scope,
		})
	}

	result.Add(definitionFile, g)
	return nil
}

// splitModulePath splits a module path into its prefix and final element,
// so "github.com/spf13/cobra" becomes ("github.com/spf13", "cobra").
func splitModulePath(path string) (namespace, name string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// Package maven resolves Maven definition files (pom.xml).
package maven

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/pkg/depgraph"
)

// Resolver resolves pom.xml files without invoking Maven.
type Resolver struct {
	resolver.NoPreparation
}

// New creates the Maven resolver.
func New() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Details() resolver.Details {
	return resolver.Details{
		Name:     "Maven",
		Homepage: "https://maven.apache.org/",
		Language: "java",
		Globs:    []string{"pom.xml"},
	}
}

// Command prefers the project's wrapper script when the working directory
// carries one.
func (r *Resolver) Command(workingDir string) string {
	wrapper := "mvnw"
	if _, err := os.Stat(filepath.Join(workingDir, wrapper)); err == nil {
		return "./" + wrapper
	}
	return "mvn"
}

// pom mirrors the pom.xml fields this resolver reads.
type pom struct {
	GroupID      string       `xml:"groupId"`
	ArtifactID   string       `xml:"artifactId"`
	Version      string       `xml:"version"`
	Properties   properties   `xml:"properties"`
	Dependencies []dependency `xml:"dependencies>dependency"`
	Managed      []dependency `xml:"dependencyManagement>dependencies>dependency"`
}

type properties struct {
	Entries []propertyEntry `xml:",any"`
}

type propertyEntry struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type dependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

var propertyRef = regexp.MustCompile(`\$\{([^}]+)\}`)

func (r *Resolver) ResolveOne(_ context.Context, _, _, definitionFile string, result resolver.Result) error {
	data, err := os.ReadFile(definitionFile)
	if err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	var p pom
	if err := xml.Unmarshal(data, &p); err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	props := make(map[string]string, len(p.Properties.Entries)+2)
	for _, e := range p.Properties.Entries {
		props[e.XMLName.Local] = strings.TrimSpace(e.Value)
	}
	// Built-in references resolvable from the project coordinates.
	props["project.groupId"] = p.GroupID
	props["project.version"] = p.Version

	g := depgraph.New(definitionFile)
	addDependencies(g, p.Dependencies, props, "")
	addDependencies(g, p.Managed, props, "management")

	result.Add(definitionFile, g)
	return nil
}

func addDependencies(g *depgraph.Graph, deps []dependency, props map[string]string, scopeOverride string) {
	for _, d := range deps {
		if d.GroupID == "" || d.ArtifactID == "" {
			continue
		}

		scope := d.Scope
		if scope == "" {
			scope = "compile"
		}
		if scopeOverride != "" {
			scope = scopeOverride
		}

		g.AddPackage(depgraph.Package{
			Name:      interpolate(d.ArtifactID, props),
			Namespace: interpolate(d.GroupID, props),
			Version:   interpolate(d.Version, props),
			Type:      "maven",
			Scope:     scope,
		})
	}
}

// interpolate substitutes ${property} references. Unknown references are
// kept verbatim so the output still identifies the dependency.
func interpolate(s string, props map[string]string) string {
	return propertyRef.ReplaceAllStringFunc(s, func(ref string) string {
		key := ref[2 : len(ref)-1]
		if v, ok := props[key]; ok && v != "" {
			return v
		}
		return ref
	})
}

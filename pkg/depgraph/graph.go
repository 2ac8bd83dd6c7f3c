// Package depgraph provides the dependency graph produced by ecosystem
// resolvers. A graph holds the packages declared by one definition file and
// the depends-on relationships between them.
package depgraph

import (
	"fmt"
	"sort"
)

// Package identifies one declared dependency.
type Package struct {
	// Name is the unqualified package name.
	Name string `json:"name"`

	// Namespace is the group, organization, or module prefix, if the
	// ecosystem has one (Maven groupId, Go module prefix, npm scope).
	Namespace string `json:"namespace,omitempty"`

	// Version is the declared version or version requirement.
	Version string `json:"version,omitempty"`

	// Type is the ecosystem label ("go", "npm", "maven", "gradle", "pip").
	Type string `json:"type"`

	// Scope is the dependency scope ("main", "dev", "test", "indirect", ...).
	Scope string `json:"scope,omitempty"`
}

// ID returns the stable node identifier for the package.
func (p Package) ID() string {
	if p.Namespace != "" {
		return fmt.Sprintf("%s:%s/%s@%s", p.Type, p.Namespace, p.Name, p.Version)
	}
	return fmt.Sprintf("%s:%s@%s", p.Type, p.Name, p.Version)
}

// Edge is a depends-on relationship between two packages.
type Edge struct {
	From string `json:"from"` // dependent
	To   string `json:"to"`   // dependency
}

// Graph is the resolved dependency graph for one definition file.
type Graph struct {
	project    string
	nodes      map[string]Package
	deps       map[string][]string // package -> its dependencies
	dependents map[string][]string // package -> packages depending on it
}

// New creates an empty graph for the given definition file.
func New(definitionFile string) *Graph {
	return &Graph{
		project:    definitionFile,
		nodes:      make(map[string]Package),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// Project returns the definition file this graph was resolved from.
func (g *Graph) Project() string {
	return g.project
}

// AddPackage adds a package node and returns its ID.
// Adding the same package twice is a no-op.
func (g *Graph) AddPackage(p Package) string {
	id := p.ID()
	if _, exists := g.nodes[id]; !exists {
		g.nodes[id] = p
		g.deps[id] = []string{}
		g.dependents[id] = []string{}
	}
	return id
}

// AddDependency records that fromID depends on toID.
// Both packages must already be in the graph.
func (g *Graph) AddDependency(fromID, toID string) error {
	if _, exists := g.nodes[fromID]; !exists {
		return fmt.Errorf("package %q does not exist", fromID)
	}
	if _, exists := g.nodes[toID]; !exists {
		return fmt.Errorf("package %q does not exist", toID)
	}
	if fromID == toID {
		return fmt.Errorf("self-dependency detected: %s", fromID)
	}

	if !contains(g.deps[fromID], toID) {
		g.deps[fromID] = append(g.deps[fromID], toID)
	}
	if !contains(g.dependents[toID], fromID) {
		g.dependents[toID] = append(g.dependents[toID], fromID)
	}
	return nil
}

// Package returns the package with the given ID.
func (g *Graph) Package(id string) (Package, bool) {
	p, ok := g.nodes[id]
	return p, ok
}

// Packages returns all packages sorted by ID for deterministic output.
func (g *Graph) Packages() []Package {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pkgs := make([]Package, len(ids))
	for i, id := range ids {
		pkgs[i] = g.nodes[id]
	}
	return pkgs
}

// Dependencies returns the IDs the given package depends on.
func (g *Graph) Dependencies(id string) []string {
	out := append([]string(nil), g.deps[id]...)
	sort.Strings(out)
	return out
}

// Dependents returns the IDs of packages depending on the given package.
func (g *Graph) Dependents(id string) []string {
	out := append([]string(nil), g.dependents[id]...)
	sort.Strings(out)
	return out
}

// PackageCount returns the number of packages in the graph.
func (g *Graph) PackageCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of depends-on edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, ds := range g.deps {
		count += len(ds)
	}
	return count
}

// HasCycle returns true if the graph contains a dependency cycle, along with
// the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, dep := range g.deps[id] {
			if !visited[dep] {
				path[dep] = id
				if dfs(dep) {
					return true
				}
			} else if recStack[dep] {
				cyclePath = []string{dep}
				for curr := id; curr != dep; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{dep}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// Snapshot is a serializable view of a graph.
type Snapshot struct {
	Project  string    `json:"project" yaml:"project"`
	Packages []Package `json:"packages" yaml:"packages"`
	Edges    []Edge    `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Snapshot returns a deterministic serializable view of the graph.
func (g *Graph) Snapshot() Snapshot {
	snap := Snapshot{
		Project:  g.project,
		Packages: g.Packages(),
	}

	froms := make([]string, 0, len(g.deps))
	for from := range g.deps {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	for _, from := range froms {
		for _, to := range g.Dependencies(from) {
			snap.Edges = append(snap.Edges, Edge{From: from, To: to})
		}
	}
	return snap
}

func contains(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

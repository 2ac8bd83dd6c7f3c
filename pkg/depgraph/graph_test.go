package depgraph

import (
	"testing"
)

func pkg(name, version string) Package {
	return Package{Name: name, Version: version, Type: "npm", Scope: "main"}
}

func TestGraph_AddPackage(t *testing.T) {
	g := New("/a/package.json")

	id := g.AddPackage(pkg("left-pad", "1.3.0"))
	if id != "npm:left-pad@1.3.0" {
		t.Errorf("unexpected package ID: %s", id)
	}

	// Same package again is a no-op
	g.AddPackage(pkg("left-pad", "1.3.0"))
	if g.PackageCount() != 1 {
		t.Errorf("expected 1 package, got %d", g.PackageCount())
	}

	// Different version is a new node
	g.AddPackage(pkg("left-pad", "1.2.0"))
	if g.PackageCount() != 2 {
		t.Errorf("expected 2 packages, got %d", g.PackageCount())
	}
}

func TestPackage_ID_Namespace(t *testing.T) {
	p := Package{Name: "junit", Namespace: "org.junit", Version: "5.10.0", Type: "maven"}
	if got := p.ID(); got != "maven:org.junit/junit@5.10.0" {
		t.Errorf("unexpected ID: %s", got)
	}
}

func TestGraph_AddDependency(t *testing.T) {
	g := New("/a/package.json")
	a := g.AddPackage(pkg("a", "1.0.0"))
	b := g.AddPackage(pkg("b", "1.0.0"))

	if err := g.AddDependency(a, b); err != nil {
		t.Fatalf("failed to add dependency: %v", err)
	}
	// Duplicate edge is a no-op
	if err := g.AddDependency(a, b); err != nil {
		t.Fatalf("duplicate edge: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", g.EdgeCount())
	}

	deps := g.Dependencies(a)
	if len(deps) != 1 || deps[0] != b {
		t.Errorf("unexpected dependencies: %v", deps)
	}
	dependents := g.Dependents(b)
	if len(dependents) != 1 || dependents[0] != a {
		t.Errorf("unexpected dependents: %v", dependents)
	}
}

func TestGraph_AddDependency_Invalid(t *testing.T) {
	g := New("/a/package.json")
	a := g.AddPackage(pkg("a", "1.0.0"))

	if err := g.AddDependency(a, "npm:missing@1.0.0"); err == nil {
		t.Error("expected error for missing dependency node")
	}
	if err := g.AddDependency("npm:missing@1.0.0", a); err == nil {
		t.Error("expected error for missing dependent node")
	}
	if err := g.AddDependency(a, a); err == nil {
		t.Error("expected error for self-dependency")
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := New("/a/package.json")
	a := g.AddPackage(pkg("a", "1.0.0"))
	b := g.AddPackage(pkg("b", "1.0.0"))
	c := g.AddPackage(pkg("c", "1.0.0"))

	_ = g.AddDependency(a, b)
	_ = g.AddDependency(b, c)

	if cycle, _ := g.HasCycle(); cycle {
		t.Error("unexpected cycle in acyclic graph")
	}

	_ = g.AddDependency(c, a)
	cycle, path := g.HasCycle()
	if !cycle {
		t.Fatal("expected cycle")
	}
	if len(path) < 3 {
		t.Errorf("unexpected cycle path: %v", path)
	}
}

func TestGraph_Snapshot_Deterministic(t *testing.T) {
	g := New("/a/package.json")
	a := g.AddPackage(pkg("zeta", "1.0.0"))
	b := g.AddPackage(pkg("alpha", "1.0.0"))
	_ = g.AddDependency(a, b)

	s1 := g.Snapshot()
	s2 := g.Snapshot()

	if s1.Project != "/a/package.json" {
		t.Errorf("unexpected project: %s", s1.Project)
	}
	if len(s1.Packages) != 2 || s1.Packages[0].Name != "alpha" {
		t.Errorf("packages not sorted: %v", s1.Packages)
	}
	if len(s1.Edges) != 1 || s1.Edges[0] != s2.Edges[0] {
		t.Errorf("snapshot not deterministic: %v vs %v", s1.Edges, s2.Edges)
	}
}

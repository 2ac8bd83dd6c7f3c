package gomod

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/pkg/depgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGoMod = `module example.com/demo

go 1.22

require (
	github.com/spf13/cobra v1.10.2
	golang.org/x/sync v0.19.0 // indirect
)

require gopkg.in/yaml.v3 v3.0.1
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveOne(t *testing.T) {
	path := writeManifest(t, "go.mod", sampleGoMod)

	r := New()
	result := make(resolver.Result)
	require.NoError(t, r.ResolveOne(context.Background(), filepath.Dir(path), filepath.Dir(path), path, result))

	g, ok := result[path]
	require.True(t, ok, "result must be keyed by the definition file")
	assert.Equal(t, 3, g.PackageCount())

	pkgs := map[string]depgraph.Package{}
	for _, p := range g.Packages() {
		pkgs[p.Namespace+"/"+p.Name] = p
	}

	cobra := pkgs["github.com/spf13/cobra"]
	assert.Equal(t, "v1.10.2", cobra.Version)
	assert.Equal(t, "main", cobra.Scope)
	assert.Equal(t, "go", cobra.Type)

	sync := pkgs["golang.org/x/sync"]
	assert.Equal(t, "indirect", sync.Scope)

	yaml := pkgs["gopkg.in/yaml.v3"]
	assert.Equal(t, "v3.0.1", yaml.Version)
}

func TestResolveOne_Malformed(t *testing.T) {
	path := writeManifest(t, "go.mod", "require (\n")

	r := New()
	err := r.ResolveOne(context.Background(), "", "", path, make(resolver.Result))
	require.Error(t, err)

	var rerr *resolver.ResolutionError
	assert.True(t, errors.As(err, &rerr), "expected *ResolutionError, got %T", err)
}

func TestResolveOne_MissingFile(t *testing.T) {
	r := New()
	err := r.ResolveOne(context.Background(), "", "", filepath.Join(t.TempDir(), "go.mod"), make(resolver.Result))
	require.Error(t, err)
}

func TestSplitModulePath(t *testing.T) {
	tests := []struct {
		path      string
		namespace string
		name      string
	}{
		{"github.com/spf13/cobra", "github.com/spf13", "cobra"},
		{"gopkg.in/yaml.v3", "gopkg.in", "yaml.v3"},
		{"modernc.org/sqlite", "modernc.org", "sqlite"},
		{"single", "", "single"},
	}
	for _, tt := range tests {
		ns, name := splitModulePath(tt.path)
		assert.Equal(t, tt.namespace, ns, tt.path)
		assert.Equal(t, tt.name, name, tt.path)
	}
}

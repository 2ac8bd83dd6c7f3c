package maven

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

const samplePom = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>demo</artifactId>
  <version>1.0.0</version>
  <properties>
    <junit.version>5.10.0</junit.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.junit.jupiter</groupId>
      <artifactId>junit-jupiter</artifactId>
      <version>${junit.version}</version>
      <scope>test</scope>
    </dependency>
    <dependency>
      <groupId>${project.groupId}</groupId>
      <artifactId>demo-core</artifactId>
      <version>${project.version}</version>
    </dependency>
  </dependencies>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.fasterxml.jackson.core</groupId>
        <artifactId>jackson-databind</artifactId>
        <version>2.16.1</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

func writePom(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pom.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveOne(t *testing.T) {
	path := writePom(t, samplePom)

	r := New()
	result := make(resolver.Result)
	require.NoError(t, r.ResolveOne(context.Background(), "", filepath.Dir(path), path, result))

	g, ok := result[path]
	require.True(t, ok)
	assert.Equal(t, 3, g.PackageCount())

	byName := map[string]depgraph.Package{}
	for _, p := range g.Packages() {
		byName[p.Name] = p
	}

	junit := byName["junit-jupiter"]
	assert.Equal(t, "org.junit.jupiter", junit.Namespace)
	assert.Equal(t, "5.10.0", junit.Version, "property reference is interpolated")
	assert.Equal(t, "test", junit.Scope)

	core := byName["demo-core"]
	assert.Equal(t, "com.example", core.Namespace, "project.groupId resolves")
	assert.Equal(t, "1.0.0", core.Version, "project.version resolves")
	assert.Equal(t, "compile", core.Scope, "scope defaults to compile")

	jackson := byName["jackson-databind"]
	assert.Equal(t, "management", jackson.Scope)
}

func TestResolveOne_MalformedXML(t *testing.T) {
	path := writePom(t, "<project><dependencies>")

	r := New()
	err := r.ResolveOne(context.Background(), "", "", path, make(resolver.Result))
	require.Error(t, err)

	var rerr *resolver.ResolutionError
	assert.True(t, errors.As(err, &rerr), "expected *ResolutionError, got %T", err)
}

func TestCommand_PrefersWrapper(t *testing.T) {
	dir := t.TempDir()
	r := New()

	assert.Equal(t, "mvn", r.Command(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mvnw"), []byte("#!/bin/sh\n"), 0o755))
	assert.Equal(t, "./mvnw", r.Command(dir))
}

func TestInterpolate_UnknownReferenceKept(t *testing.T) {
	got := interpolate("${missing.version}", map[string]string{})
	assert.Equal(t, "${missing.version}", got)
}

package gradle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/pkg/depgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBuildGradle = `
def junitVersion = "5.10.0"

dependencies {
    implementation 'com.squareup.okhttp3:okhttp:4.12.0'
    testImplementation "org.junit.jupiter:junit-jupiter:$junitVersion"
    // implementation 'commented:out:1.0.0'
}
`

const sampleBuildGradleKts = `
val ktorVersion = "2.3.7"

dependencies {
    implementation("io.ktor:ktor-server-core:${ktorVersion}")
}
`

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resolveScript(t *testing.T, path string) *depgraph.Graph {
	t.Helper()
	r := New()
	result := make(resolver.Result)
	require.NoError(t, r.ResolveOne(context.Background(), "", filepath.Dir(path), path, result))
	g, ok := result[path]
	require.True(t, ok)
	return g
}

func TestResolveOne_Groovy(t *testing.T) {
	g := resolveScript(t, writeScript(t, "build.gradle", sampleBuildGradle))
	assert.Equal(t, 2, g.PackageCount(), "commented line is skipped")

	byName := map[string]depgraph.Package{}
	for _, p := range g.Packages() {
		byName[p.Name] = p
	}

	okhttp := byName["okhttp"]
	assert.Equal(t, "com.squareup.okhttp3", okhttp.Namespace)
	assert.Equal(t, "4.12.0", okhttp.Version)
	assert.Equal(t, "main", okhttp.Scope)

	junit := byName["junit-jupiter"]
	assert.Equal(t, "5.10.0", junit.Version, "$var reference is interpolated")
	assert.Equal(t, "test", junit.Scope)
}

func TestResolveOne_Kotlin(t *testing.T) {
	g := resolveScript(t, writeScript(t, "build.gradle.kts", sampleBuildGradleKts))
	require.Equal(t, 1, g.PackageCount())

	p := g.Packages()[0]
	assert.Equal(t, "ktor-server-core", p.Name)
	assert.Equal(t, "2.3.7", p.Version, "${var} reference is interpolated")
}

func TestResolveOne_EmptyScript(t *testing.T) {
	g := resolveScript(t, writeScript(t, "build.gradle", "plugins { id 'java' }\n"))
	assert.Equal(t, 0, g.PackageCount())
}

func TestCommand_PrefersWrapper(t *testing.T) {
	dir := t.TempDir()
	r := New()

	assert.Equal(t, "gradle", r.Command(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "gradlew"), []byte("#!/bin/sh\n"), 0o755))
	assert.Equal(t, "./gradlew", r.Command(dir))
}

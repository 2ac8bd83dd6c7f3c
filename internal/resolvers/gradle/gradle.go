// Package gradle resolves Gradle build scripts (build.gradle and
// build.gradle.kts) by extracting declared dependency coordinates. Gradle
// scripts are full programs, so this is a best-effort static read rather
// than an evaluation.
package gradle

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/pkg/depgraph"
)

// Resolver resolves Gradle build scripts without invoking Gradle.
type Resolver struct {
	resolver.NoPreparation
}

// New creates the Gradle resolver.
func New() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Details() resolver.Details {
	return resolver.Details{
		Name:     "Gradle",
		Homepage: "https://gradle.org/",
		Language: "java",
		Globs:    []string{"build.gradle", "build.gradle.kts"},
	}
}

// Command prefers the project's wrapper script when the working directory
// carries one.
func (r *Resolver) Command(workingDir string) string {
	wrapper := "gradlew"
	if _, err := os.Stat(filepath.Join(workingDir, wrapper)); err == nil {
		return "./" + wrapper
	}
	return "gradle"
}

// coordinate captures "group:artifact:version" strings wherever they appear.
var coordinate = regexp.MustCompile(`["']([\w\.-]+):([\w\.-]+):([^"']+)["']`)

// varAssignment captures simple variable assignments used for versions,
// e.g. `def junitVersion = "5.10.0"` or `val ktorVersion = "2.3.0"`.
var varAssignment = regexp.MustCompile(`(?m)^\s*(?:def\s+|val\s+|var\s+)?(\w+)\s*=\s*["']([^"']+)["']`)

// scopeKeywords maps Gradle configuration names to dependency scopes.
var scopeKeywords = map[string]string{
	"implementation":            "main",
	"api":                       "main",
	"compile":                   "main",
	"runtimeOnly":               "main",
	"compileOnly":               "main",
	"testImplementation":        "test",
	"testCompile":               "test",
	"testRuntimeOnly":           "test",
	"androidTestImplementation": "test",
}

func (r *Resolver) ResolveOne(_ context.Context, _, _, definitionFile string, result resolver.Result) error {
	data, err := os.ReadFile(definitionFile)
	if err != nil {
		return &resolver.ResolutionError{Resolver: r.Details().Name, DefinitionFile: definitionFile, Err: err}
	}

	content := string(data)
	vars := extractVars(content)

	g := depgraph.New(definitionFile)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "//") || !strings.Contains(line, ":") {
			continue
		}

		scope := scopeForLine(line)

		for _, m := range coordinate.FindAllStringSubmatch(line, -1) {
			group, name, version := m[1], m[2], interpolate(m[3], vars)

			// Plugin and SCM coordinates are not dependencies.
			if strings.HasPrefix(group, "scm") || strings.Contains(version, "scm:") {
				continue
			}

			g.AddPackage(depgraph.Package{
				Name:      name,
				Namespace: group,
				Version:   version,
				Type:      "gradle",
				Scope:     scope,
			})
		}
	}

	result.Add(definitionFile, g)
	return nil
}

func scopeForLine(line string) string {
	for keyword, scope := range scopeKeywords {
		if strings.HasPrefix(line, keyword+" ") || strings.HasPrefix(line, keyword+"(") {
			return scope
		}
	}
	return "main"
}

func extractVars(content string) map[string]string {
	vars := make(map[string]string)
	for _, m := range varAssignment.FindAllStringSubmatch(content, -1) {
		vars[m[1]] = m[2]
	}
	return vars
}

// interpolate substitutes $var and ${var} references from the script's
// simple assignments. Unknown references stay verbatim.
func interpolate(version string, vars map[string]string) string {
	if !strings.Contains(version, "$") {
		return version
	}

	for name, value := range vars {
		version = strings.ReplaceAll(version, "${"+name+"}", value)
		version = strings.ReplaceAll(version, "$"+name, value)
	}
	return version
}

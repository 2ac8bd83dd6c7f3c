// Package resolver defines the contract between the resolution orchestrator
// and ecosystem-specific dependency resolvers, and the orchestrator that
// drives a batch of definition files through one resolver.
package resolver

import (
	"context"

	"github.com/leapstack-labs/depscan/pkg/depgraph"
)

// Details describes a resolver's static metadata. Name is the stable
// identifier used for logging and selection; every implementation defines it
// literally.
type Details struct {
	Name     string
	Homepage string
	Language string

	// Globs is the ordered list of glob patterns identifying candidate
	// definition files, matched at any directory depth.
	Globs []string
}

// Result accumulates resolved dependency graphs keyed by definition file.
// Keys are unique within one orchestration call; insertion order is
// irrelevant.
type Result map[string]*depgraph.Graph

// Add stores the graph resolved from a definition file.
func (r Result) Add(definitionFile string, g *depgraph.Graph) {
	r[definitionFile] = g
}

// Resolver is the capability contract every ecosystem-specific implementation
// must satisfy. Implementations are immutable after construction and reused
// across orchestration runs.
type Resolver interface {
	// Details returns the resolver's static metadata. Pure.
	Details() Details

	// Command returns the name or path of the external tool this resolver
	// would invoke in workingDir. The answer may differ across directories
	// (wrapper scripts) or operating systems. Pure query; never executes
	// anything.
	Command(workingDir string) string

	// PrepareResolution performs one-time setup or prerequisite checks.
	// It runs exactly once per orchestration run, before the first
	// ResolveOne call, and must be idempotent if called again.
	PrepareResolution(ctx context.Context) error

	// ResolveOne resolves the single project rooted at definitionFile and
	// writes the resulting graph into result, keyed by definitionFile,
	// before returning nil. Implementations without real resolution logic
	// must return a *NotImplementedError instead of silently leaving the
	// accumulator unchanged.
	ResolveOne(ctx context.Context, projectDir, workingDir, definitionFile string, result Result) error
}

// NoPreparation provides the default no-op PrepareResolution for resolvers
// that need no setup or prerequisite checks.
type NoPreparation struct{}

// PrepareResolution does nothing.
func (NoPreparation) PrepareResolution(context.Context) error {
	return nil
}

// Unimplemented provides a ResolveOne that fails loudly. Embedding it
// guarantees a resolver stub surfaces as an error instead of an empty
// success.
type Unimplemented struct{}

// ResolveOne always returns a *NotImplementedError.
func (Unimplemented) ResolveOne(_ context.Context, _, _, definitionFile string, _ Result) error {
	return &NotImplementedError{DefinitionFile: definitionFile}
}

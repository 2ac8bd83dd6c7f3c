// Package resolvers wires the bundled ecosystem resolvers into the default
// registry.
package resolvers

import (
	"sync"

	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/internal/resolvers/gomod"
	"github.com/leapstack-labs/depscan/internal/resolvers/gradle"
	"github.com/leapstack-labs/depscan/internal/resolvers/maven"
	"github.com/leapstack-labs/depscan/internal/resolvers/npm"
	"github.com/leapstack-labs/depscan/internal/resolvers/pip"
)

var (
	once     sync.Once
	registry *resolver.Registry
)

// Default returns the process-wide registry of bundled resolvers, built once
// on first access. Order encodes discovery priority.
func Default() *resolver.Registry {
	once.Do(func() {
		registry = resolver.NewRegistry(
			gomod.New(),
			npm.New(),
			maven.New(),
			gradle.New(),
			pip.New(),
		)
	})
	return registry
}

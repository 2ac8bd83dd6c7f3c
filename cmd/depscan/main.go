// Command depscan scans a project tree for dependency definition files
// and resolves each into a dependency graph.
package main

import (
	"os"

	"github.com/leapstack-labs/depscan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

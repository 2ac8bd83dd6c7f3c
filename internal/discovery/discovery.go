// Package discovery walks a project tree and routes candidate definition
// files to the resolvers whose globs match them. A file matched by several
// resolvers is assigned to the first one in registry order; the registry
// itself takes no part in that decision.
package discovery

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/depscan/internal/resolver"
)

// defaultExcludes are directory names never worth descending into.
var defaultExcludes = map[string]bool{
	".git":         true,
	".hg":          true,
	".idea":        true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
}

// ExcludeSet returns the directory names a scan skips: the built-in
// defaults plus extra.
func ExcludeSet(extra []string) map[string]bool {
	excluded := make(map[string]bool, len(defaultExcludes)+len(extra))
	for name := range defaultExcludes {
		excluded[name] = true
	}
	for _, name := range extra {
		excluded[name] = true
	}
	return excluded
}

// Options configures a scan.
type Options struct {
	// Excludes adds directory names to skip on top of the defaults.
	Excludes []string
}

// Assignment is the ordered list of definition files routed to one resolver.
type Assignment struct {
	Resolver resolver.Resolver
	Files    []string
}

// Result holds the assignments and statistics for one scan.
type Result struct {
	Assignments []Assignment

	FilesSeen    int
	FilesMatched int
	DirsSkipped  int
	Duration     time.Duration
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d definition file(s) matched out of %d seen (%d dir(s) skipped) in %s",
		r.FilesMatched, r.FilesSeen, r.DirsSkipped, r.Duration.Round(time.Millisecond))
}

// Scanner discovers definition files for the resolvers of one registry.
type Scanner struct {
	registry *resolver.Registry
	matchers []*resolver.Matcher
	logger   *slog.Logger
}

// NewScanner compiles the matchers for every resolver in the registry.
// An invalid glob in any resolver surfaces here as a *ConfigurationError.
func NewScanner(registry *resolver.Registry, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rs := registry.Resolvers()
	matchers := make([]*resolver.Matcher, len(rs))
	for i, r := range rs {
		m, err := resolver.NewMatcher(r.Details().Globs)
		if err != nil {
			return nil, fmt.Errorf("resolver %s: %w", r.Details().Name, err)
		}
		matchers[i] = m
	}

	return &Scanner{registry: registry, matchers: matchers, logger: logger}, nil
}

// Scan walks projectDir and returns the per-resolver assignments in registry
// order. Files are listed in walk order, which is deterministic.
func (s *Scanner) Scan(projectDir string, opts Options) (*Result, error) {
	start := time.Now()

	excluded := ExcludeSet(opts.Excludes)

	rs := s.registry.Resolvers()
	files := make([][]string, len(rs))
	result := &Result{}

	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != projectDir && excluded[d.Name()] {
				result.DirsSkipped++
				return filepath.SkipDir
			}
			return nil
		}

		result.FilesSeen++

		assigned := -1
		for i, m := range s.matchers {
			if !m.Matches(path) {
				continue
			}
			if assigned < 0 {
				assigned = i
				continue
			}
			// Registry order already decided; later matches are shadowed.
			s.logger.Debug("definition file shadowed by higher-priority resolver",
				"definition_file", path,
				"resolver", rs[i].Details().Name,
				"assigned_to", rs[assigned].Details().Name)
		}

		if assigned >= 0 {
			files[assigned] = append(files[assigned], path)
			result.FilesMatched++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("project walk failed: %w", err)
	}

	for i, r := range rs {
		if len(files[i]) == 0 {
			continue
		}
		result.Assignments = append(result.Assignments, Assignment{Resolver: r, Files: files[i]})
	}

	result.Duration = time.Since(start)

	s.logger.Info("discovery completed",
		"project_dir", projectDir,
		"files_seen", result.FilesSeen,
		"files_matched", result.FilesMatched,
		"resolvers", len(result.Assignments),
		"duration", result.Duration.Round(time.Millisecond).String())

	return result, nil
}

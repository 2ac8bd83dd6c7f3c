package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/depscan/internal/analyzer"
	"github.com/leapstack-labs/depscan/internal/discovery"
	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/internal/state"
)

// watchDebounce coalesces bursts of file system events into one re-resolve.
const watchDebounce = 500 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve whenever a definition file changes",
		Long: `Watch the project tree and re-run resolution whenever a dependency
definition file is created, modified, or removed. Stops on Ctrl+C.`,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	var store state.Store
	sqlStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	if sqlStore != nil {
		defer sqlStore.Close()
		store = sqlStore
	}

	registry, err := activeRegistry(cfg)
	if err != nil {
		return err
	}
	matchers := make([]*resolver.Matcher, 0, registry.Len())
	for _, r := range registry.Resolvers() {
		m, err := resolver.NewMatcher(r.Details().Globs)
		if err != nil {
			return err
		}
		matchers = append(matchers, m)
	}

	scanner, err := discovery.NewScanner(registry, logger)
	if err != nil {
		return err
	}
	a := analyzer.NewAnalyzer(store, logger, cfg.Concurrency)

	resolveAll := func(ctx context.Context) {
		scan, err := scanner.Scan(cfg.ProjectDir, discovery.Options{Excludes: cfg.Excludes})
		if err != nil {
			logger.Error("scan failed", "error", err)
			return
		}
		if scan.FilesMatched == 0 {
			logger.Info("no definition files found", "project_dir", cfg.ProjectDir)
			return
		}
		run, err := a.Analyze(ctx, cfg.ProjectDir, scan.Assignments)
		if err != nil {
			logger.Error("analysis failed", "error", err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "resolved %d graph(s), %d resolver(s) failed\n",
			len(run.Merged()), len(run.Failed()))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchTree(watcher, cfg.ProjectDir, cfg.Excludes); err != nil {
		return fmt.Errorf("failed to watch project: %w", err)
	}

	ctx := cmd.Context()
	resolveAll(ctx)
	logger.Info("watching for changes", "project_dir", cfg.ProjectDir)

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// New directories need to join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchTree(watcher, event.Name, cfg.Excludes)
				}
			}

			matched := false
			for _, m := range matchers {
				if m.Matches(event.Name) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				logger.Info("change detected", "definition_file", name)
				resolveAll(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}

// watchTree recursively adds directories under root to the watcher,
// skipping the excluded ones.
func watchTree(watcher *fsnotify.Watcher, root string, excludes []string) error {
	excluded := discovery.ExcludeSet(excludes)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The tree can change underneath the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && excluded[d.Name()] {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// Package commands implements the depscan subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/depscan/internal/config"
	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/internal/resolvers"
	"github.com/leapstack-labs/depscan/internal/state"
)

// configKey and loggerKey store config and logger in the command context.
type (
	configKey struct{}
	loggerKey struct{}
)

// ConfigKey returns the context key for the loaded configuration. The cli
// package stores the value; commands retrieve it via GetConfig.
func ConfigKey() interface{} { return configKey{} }

// LoggerKey returns the context key for the CLI logger.
func LoggerKey() interface{} { return loggerKey{} }

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	cwd, _ := os.Getwd()
	return &config.Config{
		ProjectDir: cwd,
		StatePath:  config.DefaultStateFile,
		Output:     config.DefaultOutput,
	}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// activeRegistry returns the bundled registry, restricted to the resolvers
// named in cfg when the list is non-empty. Registry order is preserved.
func activeRegistry(cfg *config.Config) (*resolver.Registry, error) {
	registry := resolvers.Default()
	if len(cfg.Resolvers) == 0 {
		return registry, nil
	}

	wanted := make(map[string]bool, len(cfg.Resolvers))
	for _, name := range cfg.Resolvers {
		if _, ok := registry.ForName(name); !ok {
			return nil, fmt.Errorf("unknown resolver %q", name)
		}
		wanted[name] = true
	}

	var selected []resolver.Resolver
	for _, r := range registry.Resolvers() {
		if wanted[r.Details().Name] {
			selected = append(selected, r)
		}
	}
	return resolver.NewRegistry(selected...), nil
}

// openStore opens the history database configured in cfg. It returns nil
// when history is disabled.
func openStore(cfg *config.Config) (*state.SQLiteStore, error) {
	if cfg.StatePath == "" {
		return nil, nil
	}

	if cfg.StatePath != ":memory:" {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return store, nil
}

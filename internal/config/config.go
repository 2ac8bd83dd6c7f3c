// Package config loads depscan configuration from file, environment
// variables, and CLI flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "depscan.yaml"
	ConfigFileNameAlt = "depscan.yml"
)

// Default configuration values.
const (
	DefaultStateFile   = ".depscan/state.db"
	DefaultOutput      = "table"
	DefaultConcurrency = 0 // 0 means number of CPUs
)

// maxUpwardSearchLevels limits how far up the directory tree to search for
// config files.
const maxUpwardSearchLevels = 10

// Config is the resolved depscan configuration.
type Config struct {
	// ProjectDir is the root of the project to scan. Always absolute after
	// loading.
	ProjectDir string `koanf:"project_dir"`

	// Excludes lists directory names skipped during discovery, on top of
	// the built-in defaults.
	Excludes []string `koanf:"excludes"`

	// Resolvers restricts resolution to the named resolvers. Empty means
	// all bundled resolvers.
	Resolvers []string `koanf:"resolvers"`

	// StatePath is the SQLite history database. Empty disables history.
	StatePath string `koanf:"state_path"`

	// Output selects the resolve output format: table, json, or yaml.
	Output string `koanf:"output"`

	// Concurrency caps how many resolvers run in parallel.
	Concurrency int `koanf:"concurrency"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// configExistsIn checks if a depscan config file exists in the directory.
func configExistsIn(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a depscan config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if path := configExistsIn(dir); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load loads configuration. cfgFile is an explicit config file path; when
// empty, depscan.yaml is searched upward from the working directory. flags
// may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"project_dir": ".",
		"state_path":  DefaultStateFile,
		"output":      DefaultOutput,
		"concurrency": DefaultConcurrency,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed := cfgFile
	if configFileUsed == "" {
		if cwd, err := os.Getwd(); err == nil {
			configFileUsed = findConfigUpward(cwd)
		}
	}
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// DEPSCAN_STATE_PATH -> state_path
	if err := k.Load(env.Provider("DEPSCAN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DEPSCAN_"))
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")

			// The CLI uses --state for brevity; the config key is state_path.
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	abs, err := filepath.Abs(cfg.ProjectDir)
	if err != nil {
		return nil, "", fmt.Errorf("invalid project dir %q: %w", cfg.ProjectDir, err)
	}
	cfg.ProjectDir = abs

	if cfg.StatePath != "" && cfg.StatePath != ":memory:" && !filepath.IsAbs(cfg.StatePath) {
		cfg.StatePath = filepath.Join(cfg.ProjectDir, cfg.StatePath)
	}

	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return nil, "", fmt.Errorf("invalid output format %q (expected table, json, or yaml)", cfg.Output)
	}

	return &cfg, configFileUsed, nil
}

// Package cli provides the command-line interface for depscan.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/depscan/internal/cli/commands"
	"github.com/leapstack-labs/depscan/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "depscan",
		Short: "depscan - Dependency Definition Scanner",
		Long: `depscan discovers dependency definition files (go.mod, package.json,
pom.xml, build.gradle, requirements.txt) across a project tree, resolves
each into a dependency graph, and records the results.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, configFileUsed, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			slog.SetDefault(logger)

			ctx := context.WithValue(cmd.Context(), commands.ConfigKey(), cfg)
			ctx = context.WithValue(ctx, commands.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if cfg.Verbose && configFileUsed != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFileUsed)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./depscan.yaml)")
	rootCmd.PersistentFlags().StringP("project-dir", "p", "", "Project directory to scan")
	rootCmd.PersistentFlags().StringSlice("excludes", nil, "Additional directory names to skip")
	rootCmd.PersistentFlags().StringSlice("resolvers", nil, "Restrict to the named resolvers (e.g. GoMod,NPM)")
	rootCmd.PersistentFlags().String("state", "", "Path to history database (':memory:' for ephemeral)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "Max resolvers running in parallel (0 = number of CPUs)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewResolveCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())

	return rootCmd
}

// newLogger builds the CLI logger writing to stderr.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command. Ctrl+C cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

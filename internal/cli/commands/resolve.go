package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/depscan/internal/analyzer"
	"github.com/leapstack-labs/depscan/internal/discovery"
	"github.com/leapstack-labs/depscan/internal/state"
	"github.com/leapstack-labs/depscan/pkg/depgraph"
)

// ResolveOptions holds options for the resolve command.
type ResolveOptions struct {
	OutFile string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	opts := &ResolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Discover and resolve all dependency definition files",
		Long: `Walk the project tree, route every definition file to its resolver,
and resolve each into a dependency graph.

A resolver that fails discards its whole batch; the other resolvers are
unaffected. The command exits non-zero if any resolver failed.`,
		Example: `  # Resolve the current project
  depscan resolve

  # Resolve another project, write the graphs as JSON
  depscan resolve -p ../service --output json --out graphs.json`,
		Aliases: []string{"scan"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.OutFile, "out", "", "Write output to a file instead of stdout")

	return cmd
}

// resolveDocument is the serializable output of a resolve run.
type resolveDocument struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	ProjectDir string           `json:"project_dir" yaml:"project_dir"`
	Duration   string           `json:"duration" yaml:"duration"`
	Graphs     []resolveGraph   `json:"graphs" yaml:"graphs"`
	Failures   []resolveFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type resolveGraph struct {
	Resolver       string            `json:"resolver" yaml:"resolver"`
	DefinitionFile string            `json:"definition_file" yaml:"definition_file"`
	Graph          depgraph.Snapshot `json:"graph" yaml:"graph"`
}

type resolveFailure struct {
	Resolver string `json:"resolver" yaml:"resolver"`
	Error    string `json:"error" yaml:"error"`
}

func runResolve(cmd *cobra.Command, opts *ResolveOptions) error {
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

	scanner, err := discovery.NewScanner(registry, logger)
	if err != nil {
		return err
	}

	scan, err := scanner.Scan(cfg.ProjectDir, discovery.Options{Excludes: cfg.Excludes})
	if err != nil {
		return err
	}

	if scan.FilesMatched == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No definition files found in %s\n", cfg.ProjectDir)
		return nil
	}

	a := analyzer.NewAnalyzer(store, logger, cfg.Concurrency)
	run, err := a.Analyze(cmd.Context(), cfg.ProjectDir, scan.Assignments)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.OutFile != "" {
		f, err := os.Create(opts.OutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	doc := buildResolveDocument(run)
	switch cfg.Output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		if err := enc.Encode(doc); err != nil {
			return err
		}
	default:
		renderResolveTable(out, scan, run)
	}

	if failed := run.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d resolver(s) failed", len(failed))
	}
	return nil
}

func buildResolveDocument(run *analyzer.Run) *resolveDocument {
	doc := &resolveDocument{
		RunID:      run.ID,
		ProjectDir: run.ProjectDir,
		Duration:   run.Duration.Round(time.Millisecond).String(),
	}

	for _, rr := range run.Results {
		if rr.Err != nil {
			doc.Failures = append(doc.Failures, resolveFailure{
				Resolver: rr.Resolver,
				Error:    rr.Err.Error(),
			})
			continue
		}
		for file, graph := range rr.Result {
			doc.Graphs = append(doc.Graphs, resolveGraph{
				Resolver:       rr.Resolver,
				DefinitionFile: file,
				Graph:          graph.Snapshot(),
			})
		}
	}

	sort.Slice(doc.Graphs, func(i, j int) bool {
		return doc.Graphs[i].DefinitionFile < doc.Graphs[j].DefinitionFile
	})

	return doc
}

func renderResolveTable(out io.Writer, scan *discovery.Result, run *analyzer.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Resolver", "Definition File", "Packages", "Edges", "Status"})

	totalPackages := 0
	for _, rr := range run.Results {
		if rr.Err != nil {
			t.AppendRow(table.Row{rr.Resolver, "", "", "", "FAILED: " + rr.Err.Error()})
			continue
		}

		files := make([]string, 0, len(rr.Result))
		for file := range rr.Result {
			files = append(files, file)
		}
		sort.Strings(files)

		for _, file := range files {
			graph := rr.Result[file]
			totalPackages += graph.PackageCount()
			t.AppendRow(table.Row{rr.Resolver, file, graph.PackageCount(), graph.EdgeCount(), "ok"})
		}
	}
	t.Render()

	fmt.Fprintf(out, "\n%s, %d package(s) across %d graph(s) in %s\n",
		scan.Summary(), totalPackages, len(run.Merged()), run.Duration.Round(time.Millisecond))
}

package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/depscan/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded resolution runs",
		Long:  `List the most recent resolution runs from the history database, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cfg := GetConfig(cmd.Context())
	if cfg.StatePath == "" {
		return fmt.Errorf("history is disabled (empty state path)")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Run 'depscan resolve' first.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Project", "Status", "Started", "Duration", "Resolutions"})

	for _, run := range runs {
		resolutions, err := store.GetResolutionsForRun(run.ID)
		if err != nil {
			return err
		}

		duration := ""
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}

		status := string(run.Status)
		if run.Status == state.RunStatusFailed && run.Error != "" {
			status = fmt.Sprintf("%s (%s)", run.Status, run.Error)
		}

		t.AppendRow(table.Row{
			shortID(run.ID),
			run.ProjectDir,
			status,
			run.StartedAt.Format(time.RFC3339),
			duration,
			len(resolutions),
		})
	}

	t.Render()
	return nil
}

// shortID truncates a UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/depscan/internal/resolvers"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available resolvers",
		Long:  `Display every registered resolver, its language, and the definition file patterns it handles.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Resolver", "Language", "Definition Files", "Homepage"})

			for _, r := range resolvers.Default().Resolvers() {
				d := r.Details()
				t.AppendRow(table.Row{d.Name, d.Language, strings.Join(d.Globs, ", "), d.Homepage})
			}

			t.Render()
			return nil
		},
	}
}

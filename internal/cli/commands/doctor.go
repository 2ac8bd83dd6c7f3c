package commands

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/depscan/internal/resolvers"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check which ecosystem tools are installed",
		Long: `Report, for every resolver, whether the tool it would invoke is present
on PATH or as a project wrapper script. Bundled resolvers parse manifests
directly and work without the tool; the report shows what deeper
resolution strategies would have available.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Resolver", "Language", "Tool", "Status"})

			titleCaser := cases.Title(language.English)
			missing := 0
			for _, r := range resolvers.Default().Resolvers() {
				d := r.Details()
				tool := r.Command(cfg.ProjectDir)

				status := "available"
				if strings.HasPrefix(tool, "./") {
					status = "wrapper script"
				} else if _, err := exec.LookPath(tool); err != nil {
					status = "not found"
					missing++
				}

				t.AppendRow(table.Row{d.Name, titleCaser.String(d.Language), tool, status})
			}

			t.Render()

			if missing > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d tool(s) not found. Resolution still works from manifests alone.\n", missing)
			}
			return nil
		},
	}
}

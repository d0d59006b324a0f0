package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	osqpext "github.com/osqp/extension-build-go"
)

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the required external tools are available",
		RunE: func(cmd *cobra.Command, _ []string) error {
			requirements := osqpext.RequiredTools(cfg.BuildOptions())

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Tool", "Purpose", "Status"})
			for _, req := range requirements {
				status := "found"
				if err := osqpext.CheckToolAvailable(req.Name); err != nil {
					status = "missing"
					for _, alt := range req.Alternatives {
						if osqpext.CheckToolAvailable(alt) == nil {
							status = "found (" + alt + ")"
							break
						}
					}
				}
				t.AppendRow(table.Row{req.Name, req.Purpose, status})
			}
			t.Render()

			return osqpext.CheckRequiredTools(requirements)
		},
	}
}

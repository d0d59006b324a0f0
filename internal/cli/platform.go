package cli

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	osqpext "github.com/osqp/extension-build-go"
)

func newPlatformCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Show the resolved toolchain profile for this host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := osqpext.ResolvePlatform(cfg.BuildOptions())
			if err != nil {
				return err
			}

			bitness := "32-bit"
			if profile.SixtyFourBit {
				bitness = "64-bit"
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Parameter", "Value"})
			t.AppendRows([]table.Row{
				{"OS", profile.OS},
				{"Word size", bitness},
				{"Generator", profile.Generator},
				{"Static library", profile.StaticLib},
				{"Output subdir", orNone(profile.LibSubdir)},
				{"Extra libraries", orNone(strings.Join(profile.Libraries, ", "))},
				{"Configure args", strings.Join(profile.ConfigArgs, " ")},
				{"Build flags", orNone(strings.Join(profile.BuildFlags, " "))},
				{"Compile args", orNone(strings.Join(profile.CompileArgs, " "))},
			})
			t.Render()
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// Package cli provides the command-line interface for osqp-build.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/osqp/extension-build-go/internal/cli/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "osqp-build",
		Short: "osqp-build - OSQP native extension build orchestrator",
		Long: `osqp-build drives the CMake toolchain that turns the OSQP solver sources
into loadable extension modules, and prepares the codegen source snapshot
consumed by the downstream code-generation tooling.

Two legacy targets build the solver as a static archive per source
generation; the direct target hands the whole module build to CMake.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./osqp-build.yaml)")
	rootCmd.PersistentFlags().Bool("long", false, "Keep 64-bit solver integer indices (default narrows to 32-bit for NumPy)")
	rootCmd.PersistentFlags().Bool("debug", false, "Compile extensions in debug mode")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "Parallel jobs for the direct build step")
	rootCmd.PersistentFlags().String("python", "", "Python interpreter for include-path lookups")
	rootCmd.PersistentFlags().String("source-dir", "", "First-generation solver source tree")
	rootCmd.PersistentFlags().String("source-dir2", "", "Second-generation solver source tree")

	// Add subcommands
	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newCodegenCommand())
	rootCmd.AddCommand(newPlatformCommand())
	rootCmd.AddCommand(newDoctorCommand())

	return rootCmd
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

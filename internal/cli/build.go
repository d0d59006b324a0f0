package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	osqpext "github.com/osqp/extension-build-go"
)

// buildOptions holds options for the build command.
type buildOptions struct {
	Only string
}

func newBuildCommand() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the native extension targets",
		Long: `Resolve the platform toolchain profile, declare the extension targets and
build them sequentially. The first failure aborts the whole build.`,
		Example: `  # Build all three targets
  osqp-build build

  # Build a single target
  osqp-build build --only osqp._osqp

  # Debug build with 64-bit solver indices
  osqp-build build --long --debug`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Only, "only", "", "Build only the named target (osqp._osqp, osqp.spam, osqp.ext)")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *buildOptions) error {
	buildOpts := cfg.BuildOptions()
	buildOpts.Logger = logger

	profile, err := osqpext.ResolvePlatform(buildOpts)
	if err != nil {
		return err
	}
	logger.Info("platform resolved", "os", profile.OS, "generator", profile.Generator, "static_lib", profile.StaticLib)

	descs := osqpext.GenerationDescriptors(cfg.Layout(), profile, buildOpts)

	if opts.Only != "" {
		filtered := descs[:0]
		for _, desc := range descs {
			if desc.Name == opts.Only {
				filtered = append(filtered, desc)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("unknown extension target %q", opts.Only)
		}
		descs = filtered[:len(filtered):len(filtered)]
	}

	engine := osqpext.NewEngine(profile, buildOpts)
	results, err := engine.BuildAll(cmd.Context(), descs)

	out := cmd.OutOrStdout()
	for _, result := range results {
		status := "ok"
		if !result.Success {
			status = "failed"
		}
		fmt.Fprintf(out, "%-12s %s", result.Target, status)
		if result.Artifact != "" {
			fmt.Fprintf(out, "  %s", result.Artifact)
		}
		fmt.Fprintln(out)
	}

	return err
}

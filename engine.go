package osqpext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Engine drives the external build tool for extension targets.
//
// Builds run strictly sequentially: each target owns its build directory
// exclusively and directory-recreate steps are destructive, so interleaving
// two builds against the same tree is never safe.
type Engine struct {
	profile *PlatformProfile
	opts    BuildOptions
	log     *slog.Logger
}

// NewEngine returns an engine bound to a resolved platform profile.
func NewEngine(profile *PlatformProfile, opts BuildOptions) *Engine {
	return &Engine{
		profile: profile,
		opts:    opts,
		log:     opts.logger(),
	}
}

// buildStages is the staged pipeline every strategy runs through:
//
//  1. Prepare: probe tools, set up the build directory
//  2. Configure: run the build tool's configure step
//  3. Build: run the build tool's build step
//  4. Collect: locate (and for legacy, stage) the produced artifact
//
// A failing stage stops the pipeline and surfaces its error; later stages
// never run, so an artifact-not-found can never mask a build failure.
type buildStages struct {
	PrepareFunc   func(ctx context.Context, desc *ExtensionDescriptor, result *BuildResult) error
	ConfigureFunc func(ctx context.Context, desc *ExtensionDescriptor, result *BuildResult) error
	BuildFunc     func(ctx context.Context, desc *ExtensionDescriptor, result *BuildResult) error
	CollectFunc   func(desc *ExtensionDescriptor, result *BuildResult) error
}

// Build produces one extension target, dispatching on its strategy tag.
func (e *Engine) Build(ctx context.Context, desc *ExtensionDescriptor) (*BuildResult, error) {
	var stages buildStages
	switch desc.Strategy {
	case StrategyLegacy:
		stages = legacyStages(e)
	case StrategyDirect:
		stages = directStages(e)
	default:
		return nil, fmt.Errorf("unknown build strategy %v for %s", desc.Strategy, desc.Name)
	}

	return e.runStages(ctx, desc, stages)
}

func (e *Engine) runStages(ctx context.Context, desc *ExtensionDescriptor, stages buildStages) (*BuildResult, error) {
	result := &BuildResult{Target: desc.Name}

	e.log.Info("building extension", "target", desc.Name, "strategy", desc.Strategy.String())

	if err := stages.PrepareFunc(ctx, desc, result); err != nil {
		result.Error = err
		return result, err
	}

	if err := stages.ConfigureFunc(ctx, desc, result); err != nil {
		result.Error = err
		return result, err
	}

	if err := stages.BuildFunc(ctx, desc, result); err != nil {
		result.Error = err
		return result, err
	}

	if err := stages.CollectFunc(desc, result); err != nil {
		result.Error = err
		return result, err
	}

	result.Success = true
	e.log.Info("extension built", "target", desc.Name, "artifact", result.Artifact)
	return result, nil
}

// BuildAll builds every descriptor in declaration order, stopping at the
// first failure. There is no partial-success mode: the returned error is the
// first fatal condition encountered, and results contains one entry per
// target attempted.
func (e *Engine) BuildAll(ctx context.Context, descs []*ExtensionDescriptor) ([]*BuildResult, error) {
	var results []*BuildResult

	for _, desc := range descs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			results = append(results, &BuildResult{Target: desc.Name, Error: ctxErr})
			return results, ctxErr
		}

		result, err := e.Build(ctx, desc)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

// runTool invokes the external build tool in dir, capturing combined output
// into the result. The raw exec error is returned for the caller to wrap
// with stage context.
func (e *Engine) runTool(ctx context.Context, dir string, result *BuildResult, args ...string) error {
	cmd := exec.CommandContext(ctx, buildTool, args...)
	cmd.Dir = dir

	cmd.Env = os.Environ()
	for key, value := range e.opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	if e.opts.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Running: %s %s", buildTool, strings.Join(args, " ")),
			fmt.Sprintf("Working directory: %s", dir))
	}
	e.log.Debug("invoking build tool", "dir", dir, "args", args)

	output, err := cmd.CombinedOutput()
	result.Output = append(result.Output, strings.Split(string(output), "\n")...)

	return err
}

// buildFailure wraps a non-zero tool exit with stage context. Exit status is
// always checked: a failed configure or build aborts before any copy step can
// turn it into a misleading file-not-found.
func buildFailure(stage, target string, result *BuildResult, err error) error {
	return &ExternalBuildFailureError{
		Stage:  stage,
		Target: target,
		Output: result.Output,
		Err:    err,
	}
}

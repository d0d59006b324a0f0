package osqpext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// directStages implements the build-tool-native strategy: CMake compiles,
// links and places the finished loadable module itself. The host tool runs no
// compile step of its own for this target.
func directStages(e *Engine) buildStages {
	return buildStages{
		PrepareFunc:   e.directPrepare,
		ConfigureFunc: e.directConfigure,
		BuildFunc:     e.directBuild,
		CollectFunc:   e.directCollect,
	}
}

// directPrepare creates the scratch build directory if it does not exist.
// Unlike the legacy strategy the directory is not recreated: the tool's own
// incremental build is allowed to reuse it.
func (e *Engine) directPrepare(_ context.Context, desc *ExtensionDescriptor, _ *BuildResult) error {
	return os.MkdirAll(desc.BuildDir, 0o755)
}

// directConfigure points the build tool at the extension's own CMake tree and
// routes the module output straight into the host tool's expected location.
func (e *Engine) directConfigure(ctx context.Context, desc *ExtensionDescriptor, result *BuildResult) error {
	outputDir, err := filepath.Abs(desc.OutputDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	interpreter, err := InterpreterPath(e.opts.PythonInterpreter())
	if err != nil {
		return err
	}

	sourceDir, err := filepath.Abs(desc.SourceDir)
	if err != nil {
		return err
	}

	cfg := BuildConfigName(e.opts)
	args := []string{
		sourceDir,
		"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + outputDir,
		"-DPYTHON_EXECUTABLE=" + interpreter,
	}

	if e.profile.OS == platformWindows {
		// Multi-config generators ignore the plain output setting; pin the
		// per-config directory as well.
		args = append(args, fmt.Sprintf("-DCMAKE_LIBRARY_OUTPUT_DIRECTORY_%s=%s", strings.ToUpper(cfg), outputDir))
		if e.profile.SixtyFourBit {
			args = append(args, "-A", "x64")
		}
	} else {
		args = append(args, "-DCMAKE_BUILD_TYPE="+cfg)
	}

	if err := e.runTool(ctx, desc.BuildDir, result, args...); err != nil {
		return buildFailure("configure", desc.Name, result, err)
	}
	return nil
}

// directBuild runs the build with platform-specific parallelism arguments.
func (e *Engine) directBuild(ctx context.Context, desc *ExtensionDescriptor, result *BuildResult) error {
	args := []string{"--build", ".", "--config", BuildConfigName(e.opts)}

	if e.profile.OS == platformWindows {
		args = append(args, "--", "/m")
	} else {
		jobs := e.opts.Parallel
		if jobs <= 0 {
			jobs = 2
		}
		args = append(args, "--", fmt.Sprintf("-j%d", jobs))
	}

	if err := e.runTool(ctx, desc.BuildDir, result, args...); err != nil {
		return buildFailure("build", desc.Name, result, err)
	}
	return nil
}

// directCollect records the output directory; the build tool already placed
// the finished module there, so no copy step is needed.
func (e *Engine) directCollect(desc *ExtensionDescriptor, result *BuildResult) error {
	outputDir, err := filepath.Abs(desc.OutputDir)
	if err != nil {
		return err
	}
	result.Artifact = outputDir
	return nil
}

package osqpext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// legacyStages implements the static-archive strategy: CMake builds the
// solver's static library out-of-band, and only the resulting archive crosses
// back into the host tool's build, where the C shim is compiled and linked
// against it.
func legacyStages(e *Engine) buildStages {
	return buildStages{
		PrepareFunc:   e.legacyPrepare,
		ConfigureFunc: e.legacyConfigure,
		BuildFunc:     e.legacyBuild,
		CollectFunc:   e.legacyCollect,
	}
}

// legacyPrepare probes the build tool, then recreates the build directory.
// The probe comes first: a missing toolchain must not cost the previous
// build tree its contents.
func (e *Engine) legacyPrepare(_ context.Context, desc *ExtensionDescriptor, result *BuildResult) error {
	version, err := probeBuildTool()
	if err != nil {
		return err
	}
	result.Output = append(result.Output, version)

	return recreateDir(desc.BuildDir)
}

// legacyConfigure runs the configure step against the solver's top-level
// source tree. The NumPy and interpreter include paths are resolved here,
// not at descriptor declaration time.
func (e *Engine) legacyConfigure(ctx context.Context, desc *ExtensionDescriptor, result *BuildResult) error {
	includeDirs, err := desc.MaterializedIncludeDirs()
	if err != nil {
		return err
	}
	e.log.Debug("shim include path materialized", "target", desc.Name, "dirs", includeDirs)

	pythonInc, err := PythonIncludeDir(e.opts.PythonInterpreter())
	if err != nil {
		return err
	}

	sourceRoot, err := filepath.Abs(desc.SolverRoot)
	if err != nil {
		return err
	}

	args := append([]string(nil), e.profile.ConfigArgs...)
	args = append(args, "-DPYTHON_INCLUDE_DIRS="+pythonInc, sourceRoot)

	if err := e.runTool(ctx, desc.BuildDir, result, args...); err != nil {
		return buildFailure("configure", desc.Name, result, err)
	}
	return nil
}

// legacyBuild builds only the static-library target, with the solver's own
// test suite disabled.
func (e *Engine) legacyBuild(ctx context.Context, desc *ExtensionDescriptor, result *BuildResult) error {
	args := []string{"--build", ".", "--target", staticLibTarget, "-DBUILD_TESTING=OFF"}
	args = append(args, e.profile.BuildFlags...)

	if err := e.runTool(ctx, desc.BuildDir, result, args...); err != nil {
		return buildFailure("build", desc.Name, result, err)
	}
	return nil
}

// legacyCollect copies the static archive from CMake's output directory into
// the shim source tree, overwriting any previous copy. With exit-status
// checking upstream, a missing archive here means the toolchain reported
// success without producing output.
func (e *Engine) legacyCollect(desc *ExtensionDescriptor, result *BuildResult) error {
	parts := []string{desc.BuildDir, "out"}
	if e.profile.LibSubdir != "" {
		parts = append(parts, e.profile.LibSubdir)
	}
	parts = append(parts, e.profile.StaticLib)
	archive := filepath.Join(parts...)

	if _, err := os.Stat(archive); err != nil {
		return &ArtifactNotFoundError{Path: archive, Target: desc.Name}
	}

	dest := filepath.Join(desc.SourceDir, e.profile.StaticLib)
	if err := copyFile(archive, dest); err != nil {
		return fmt.Errorf("staging %s into %s: %w", e.profile.StaticLib, desc.SourceDir, err)
	}

	result.Artifact = dest
	return nil
}

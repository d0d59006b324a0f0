package osqpext

import (
	"fmt"
	"strings"
)

// UnsupportedPlatformError is returned when no toolchain profile exists for
// the host operating system. Nothing can be built on such a host.
type UnsupportedPlatformError struct {
	OS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q: expected windows, linux or darwin", e.OS)
}

// ToolchainMissingError is returned when the external build tool cannot be
// found on the host. The probe runs before any directory is touched so a
// missing tool never leaves a half-recreated build tree behind.
type ToolchainMissingError struct {
	Tool string
	Err  error
}

func (e *ToolchainMissingError) Error() string {
	return fmt.Sprintf("%s must be installed to build the OSQP extensions: %v", e.Tool, e.Err)
}

func (e *ToolchainMissingError) Unwrap() error { return e.Err }

// SourceAssetMissingError is returned by the codegen snapshot preparer when a
// file required by the allowlist computation is absent from the solver tree.
type SourceAssetMissingError struct {
	Path string
	Err  error
}

func (e *SourceAssetMissingError) Error() string {
	return fmt.Sprintf("required source asset %s is missing: %v", e.Path, e.Err)
}

func (e *SourceAssetMissingError) Unwrap() error { return e.Err }

// ExternalBuildFailureError is returned when a CMake configure or build
// invocation exits non-zero. It carries the captured output so the failing
// compiler diagnostic is visible without re-running the command.
type ExternalBuildFailureError struct {
	Stage  string   // "configure" or "build"
	Target string   // extension target name
	Output []string // combined stdout/stderr lines
	Err    error
}

func (e *ExternalBuildFailureError) Error() string {
	msg := fmt.Sprintf("%s %s failed for %s: %v", buildTool, e.Stage, e.Target, e.Err)
	if out := strings.TrimSpace(strings.Join(e.Output, "\n")); out != "" {
		return msg + "\n\nBuild output:\n" + out
	}
	return msg
}

func (e *ExternalBuildFailureError) Unwrap() error { return e.Err }

// ArtifactNotFoundError is returned when the static archive is absent from
// its expected location after a nominally successful build. With exit-status
// checking in place this indicates a toolchain that reported success without
// producing output.
type ArtifactNotFoundError struct {
	Path   string
	Target string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("static library %s not produced by the %s build", e.Path, e.Target)
}

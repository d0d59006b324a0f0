package osqpext

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
)

// buildTool is the external build system driving every strategy.
const buildTool = "cmake"

// ToolRequirement describes an external tool dependency.
//
// Required tools must be discoverable before a build starts; optional tools
// are probed and reported but never fail the check.
type ToolRequirement struct {
	// Name is the tool binary name (e.g. "cmake", "python3").
	Name string

	// Alternatives are names that can satisfy the requirement instead.
	Alternatives []string

	// Optional tools are checked but do not cause an error when missing.
	Optional bool

	// Purpose is a human-readable reason the tool is needed.
	Purpose string
}

// RequiredTools returns the tool set the orchestrator depends on.
func RequiredTools(opts BuildOptions) []ToolRequirement {
	return []ToolRequirement{
		{Name: buildTool, Purpose: "configures and builds the solver library"},
		{
			Name:         opts.PythonInterpreter(),
			Alternatives: []string{"python"},
			Purpose:      "NumPy and interpreter include path lookups",
		},
	}
}

// CheckToolAvailable checks that a tool is discoverable in PATH.
func CheckToolAvailable(tool string) error {
	_, err := exec.LookPath(tool)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available, trying each
// requirement's alternatives in order. Missing required tools are collected
// into a single error naming each tool and its purpose.
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		if !found {
			for _, alt := range req.Alternatives {
				if CheckToolAvailable(alt) == nil {
					found = true
					break
				}
			}
		}

		if !found && !req.Optional {
			if req.Purpose != "" {
				missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missingTools = append(missingTools, req.Name)
			}
		}
	}

	if len(missingTools) == 0 {
		return nil
	}

	if len(missingTools) == 1 {
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	}

	return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
}

// probeBuildTool verifies the external build tool responds to a version
// query. Runs before any directory is recreated so an absent tool fails fast
// with ToolchainMissingError instead of a confusing file-not-found later.
func probeBuildTool() (string, error) {
	out, err := sh.Output(buildTool, "--version")
	if err != nil {
		return "", &ToolchainMissingError{Tool: buildTool, Err: err}
	}
	version := out
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		version = out[:idx]
	}
	return strings.TrimSpace(version), nil
}

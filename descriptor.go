package osqpext

import (
	"fmt"
	"path/filepath"
)

// BuildStrategy selects how the execution engine produces a target.
type BuildStrategy int

const (
	// StrategyLegacy builds a static archive via CMake and copies it into the
	// extension's shim source tree for the host tool to link against.
	StrategyLegacy BuildStrategy = iota

	// StrategyDirect delegates the entire module build to CMake, which places
	// the finished loadable module in the host tool's output directory.
	StrategyDirect
)

func (s BuildStrategy) String() string {
	switch s {
	case StrategyLegacy:
		return "legacy"
	case StrategyDirect:
		return "direct"
	default:
		return fmt.Sprintf("BuildStrategy(%d)", int(s))
	}
}

// SolverLayout locates one solver generation's source tree on disk.
type SolverLayout struct {
	Root    string // Solver tree containing src/, include/, configure/
	ShimDir string // Extension shim tree containing src/ and include/
}

// QDLDLDir returns the direct linear-solver subtree inside the solver tree.
func (l SolverLayout) QDLDLDir() string {
	return filepath.Join(l.Root, "lin_sys", "direct", "qdldl")
}

// BuildDir returns the scratch directory for the out-of-band CMake build.
func (l SolverLayout) BuildDir() string {
	return filepath.Join(l.Root, "build")
}

// ProjectLayout describes the full on-disk layout the orchestrator consumes:
// two parallel solver generations plus the direct-strategy target's own CMake
// tree and output location.
type ProjectLayout struct {
	Gen1 SolverLayout
	Gen2 SolverLayout

	DirectSourceDir string // CMake source dir of the pybind11-style target
	DirectBuildDir  string // Scratch build dir for the direct strategy
	ModuleOutputDir string // Where the host tool expects the finished module
}

// DefaultLayout returns the layout used by the OSQP source distribution.
func DefaultLayout() ProjectLayout {
	return ProjectLayout{
		Gen1: SolverLayout{
			Root:    "osqp_sources",
			ShimDir: filepath.Join("src", "extension"),
		},
		Gen2: SolverLayout{
			Root:    "osqp2_sources",
			ShimDir: filepath.Join("src", "extension2"),
		},
		DirectSourceDir: ".",
		DirectBuildDir:  filepath.Join("build", "ext"),
		ModuleOutputDir: filepath.Join("src", "osqp"),
	}
}

// ExtensionDescriptor is the declarative description of one extension target.
//
// Descriptors are built before any build step runs and are never mutated
// afterwards. IncludeDirs deliberately omits the NumPy include path: that
// path is resolved by IncludeResolver only when the build materializes, so
// declaring descriptors does not require NumPy to be installed yet.
type ExtensionDescriptor struct {
	Name     string
	Strategy BuildStrategy

	IncludeDirs     []string
	IncludeResolver func() (string, error)

	// Macros maps define names to values; an empty value is a bare define.
	Macros map[string]string

	Libraries    []string
	LibraryDirs  []string
	ExtraObjects []string
	SourceGlobs  []string
	CompileArgs  []string

	// SourceDir is the shim source directory (legacy) or the CMake source
	// directory (direct). SolverRoot is the solver tree the legacy strategy
	// hands to the configure step; unused by the direct strategy.
	SourceDir  string
	SolverRoot string
	BuildDir   string

	// OutputDir is where the finished module must land (direct strategy only).
	OutputDir string
}

// MaterializedIncludeDirs returns the full include search path, resolving the
// lazy NumPy entry. Called at build time, never at declaration time; a failed
// lookup is fatal because the shim cannot compile without the NumPy headers.
func (d *ExtensionDescriptor) MaterializedIncludeDirs() ([]string, error) {
	dirs := append([]string(nil), d.IncludeDirs...)
	if d.IncludeResolver != nil {
		inc, err := d.IncludeResolver()
		if err != nil {
			return nil, fmt.Errorf("resolving NumPy include path for %s: %w", d.Name, err)
		}
		dirs = append(dirs, inc)
	}
	return uniqueStrings(dirs), nil
}

// legacyDescriptor builds the descriptor for one solver generation.
func legacyDescriptor(name string, layout SolverLayout, profile *PlatformProfile, opts BuildOptions) *ExtensionDescriptor {
	qdldl := layout.QDLDLDir()
	shimSrc := filepath.Join(layout.ShimDir, "src")

	return &ExtensionDescriptor{
		Name:     name,
		Strategy: StrategyLegacy,
		IncludeDirs: []string{
			filepath.Join(layout.Root, "include"),           // osqp.h
			qdldl,                                           // qdldl_interface.h for workspace extraction
			filepath.Join(qdldl, "qdldl_sources", "include"), // qdldl file types
			filepath.Join(layout.ShimDir, "include"),        // auxiliary shim headers
		},
		IncludeResolver: func() (string, error) {
			return NumPyIncludeDir(opts.PythonInterpreter())
		},
		Macros:       map[string]string{"PYTHON": ""},
		Libraries:    append([]string(nil), profile.Libraries...),
		ExtraObjects: []string{filepath.Join(shimSrc, profile.StaticLib)},
		SourceGlobs:  []string{filepath.Join(shimSrc, "*.c")},
		CompileArgs:  append([]string(nil), profile.CompileArgs...),
		SourceDir:    shimSrc,
		SolverRoot:   layout.Root,
		BuildDir:     layout.BuildDir(),
	}
}

// GenerationDescriptors builds the three extension targets: the two legacy
// per-generation solver modules and the direct CMake-native module.
func GenerationDescriptors(layout ProjectLayout, profile *PlatformProfile, opts BuildOptions) []*ExtensionDescriptor {
	direct := &ExtensionDescriptor{
		Name:      "osqp.ext",
		Strategy:  StrategyDirect,
		SourceDir: layout.DirectSourceDir,
		BuildDir:  layout.DirectBuildDir,
		OutputDir: layout.ModuleOutputDir,
	}

	return []*ExtensionDescriptor{
		legacyDescriptor("osqp._osqp", layout.Gen1, profile, opts),
		legacyDescriptor("osqp.spam", layout.Gen2, profile, opts),
		direct,
	}
}

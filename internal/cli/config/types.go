// Package config provides configuration management for the osqp-build CLI.
//
// Configuration is layered: built-in defaults, then an optional
// osqp-build.yaml file, then OSQP_BUILD_* environment variables, then
// command-line flags. The merged result is resolved once at process start
// and handed to the build library as an immutable options value.
package config

// Default locations mirror the OSQP source distribution layout.
const (
	DefaultSourceDir   = "osqp_sources"
	DefaultSourceDir2  = "osqp2_sources"
	DefaultCodegenDest = "src/osqp/codegen/sources"
	DefaultPython      = "python3"
)

// Config holds all CLI configuration options.
type Config struct {
	// Solver integer width and build mode.
	Long    bool `koanf:"long"`
	Debug   bool `koanf:"debug"`
	Verbose bool `koanf:"verbose"`
	Jobs    int  `koanf:"jobs"`

	// Interpreter used for include-path lookups.
	Python string `koanf:"python"`

	// Solver generation source trees.
	SourceDir  string `koanf:"source_dir"`
	SourceDir2 string `koanf:"source_dir2"`

	// Direct-strategy target locations.
	ExtSourceDir    string `koanf:"ext_source_dir"`
	ExtBuildDir     string `koanf:"ext_build_dir"`
	ModuleOutputDir string `koanf:"module_output_dir"`

	// Codegen snapshot destination.
	CodegenDest string `koanf:"codegen_dest"`
}

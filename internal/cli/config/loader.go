package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	osqpext "github.com/osqp/extension-build-go"
)

// Package-level koanf instance and config file tracking.
var (
	k              = koanf.New(".")
	configFileUsed string
)

// GetConfigFileUsed returns the config file loaded by the last LoadConfig
// call, or empty if none was found.
func GetConfigFileUsed() string {
	return configFileUsed
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// findConfigFile finds the config file to use.
// Priority: explicit path > osqp-build.yaml > osqp-build.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"osqp-build.yaml", "osqp-build.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Fresh load: a second call must not see the previous layering.
	k = koanf.New(".")

	// A local .env file feeds the environment layer when present.
	_ = godotenv.Load()

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"long":              false,
		"debug":             false,
		"verbose":           false,
		"jobs":              0,
		"python":            DefaultPython,
		"source_dir":        DefaultSourceDir,
		"source_dir2":       DefaultSourceDir2,
		"ext_source_dir":    ".",
		"ext_build_dir":     filepath.Join("build", "ext"),
		"module_output_dir": filepath.Join("src", "osqp"),
		"codegen_dest":      filepath.FromSlash(DefaultCodegenDest),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (OSQP_BUILD_ prefix)
	// Transform: OSQP_BUILD_SOURCE_DIR -> source_dir
	if err := k.Load(env.Provider("OSQP_BUILD_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "OSQP_BUILD_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// BuildOptions converts the merged configuration into the library's
// immutable options value.
func (c *Config) BuildOptions() osqpext.BuildOptions {
	return osqpext.BuildOptions{
		LongInts: c.Long,
		Debug:    c.Debug,
		Verbose:  c.Verbose,
		Parallel: c.Jobs,
		Python:   c.Python,
	}
}

// Layout converts the merged configuration into the on-disk project layout.
func (c *Config) Layout() osqpext.ProjectLayout {
	return osqpext.ProjectLayout{
		Gen1: osqpext.SolverLayout{
			Root:    c.SourceDir,
			ShimDir: filepath.Join("src", "extension"),
		},
		Gen2: osqpext.SolverLayout{
			Root:    c.SourceDir2,
			ShimDir: filepath.Join("src", "extension2"),
		},
		DirectSourceDir: c.ExtSourceDir,
		DirectBuildDir:  c.ExtBuildDir,
		ModuleOutputDir: c.ModuleOutputDir,
	}
}

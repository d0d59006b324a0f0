package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("long", false, "")
	flags.Bool("debug", false, "")
	flags.BoolP("verbose", "v", false, "")
	flags.IntP("jobs", "j", 0, "")
	flags.String("python", "", "")
	flags.String("source-dir", "", "")
	flags.String("source-dir2", "", "")
	return flags
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Cleanup(ResetConfig)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.False(t, cfg.Long)
	assert.False(t, cfg.Debug)
	assert.Equal(t, DefaultPython, cfg.Python)
	assert.Equal(t, DefaultSourceDir, cfg.SourceDir)
	assert.Equal(t, DefaultSourceDir2, cfg.SourceDir2)
	assert.Equal(t, filepath.FromSlash(DefaultCodegenDest), cfg.CodegenDest)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "osqp-build.yaml")
	content := "long: true\npython: python3.12\nsource_dir: custom_sources\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o644))

	cfg, err := LoadConfig(cfgFile, nil)
	require.NoError(t, err)

	assert.True(t, cfg.Long)
	assert.Equal(t, "python3.12", cfg.Python)
	assert.Equal(t, "custom_sources", cfg.SourceDir)
	assert.Equal(t, cfgFile, GetConfigFileUsed())

	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultSourceDir2, cfg.SourceDir2)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "osqp-build.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("python: from-file\n"), 0o644))

	t.Setenv("OSQP_BUILD_PYTHON", "from-env")

	cfg, err := LoadConfig(cfgFile, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Python)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Cleanup(ResetConfig)

	t.Setenv("OSQP_BUILD_PYTHON", "from-env")
	t.Setenv("OSQP_BUILD_JOBS", "8")

	flags := newFlagSet()
	require.NoError(t, flags.Parse([]string{"--python", "from-flag", "--source-dir2", "alt_sources"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Python)
	assert.Equal(t, "alt_sources", cfg.SourceDir2)

	// Unchanged flags do not shadow lower layers.
	assert.Equal(t, 8, cfg.Jobs)
}

func TestBuildOptionsConversion(t *testing.T) {
	cfg := &Config{Long: true, Debug: true, Verbose: true, Jobs: 4, Python: "python3.11"}

	opts := cfg.BuildOptions()
	assert.True(t, opts.LongInts)
	assert.True(t, opts.Debug)
	assert.True(t, opts.Verbose)
	assert.Equal(t, 4, opts.Parallel)
	assert.Equal(t, "python3.11", opts.Python)
}

func TestLayoutConversion(t *testing.T) {
	cfg := &Config{
		SourceDir:       "gen1",
		SourceDir2:      "gen2",
		ExtSourceDir:    "ext",
		ExtBuildDir:     "build/ext",
		ModuleOutputDir: "out",
	}

	layout := cfg.Layout()
	assert.Equal(t, "gen1", layout.Gen1.Root)
	assert.Equal(t, "gen2", layout.Gen2.Root)
	assert.Equal(t, filepath.Join("gen1", "lin_sys", "direct", "qdldl"), layout.Gen1.QDLDLDir())
	assert.Equal(t, "ext", layout.DirectSourceDir)
	assert.Equal(t, "out", layout.ModuleOutputDir)
}

package osqpext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// stubTools installs fake cmake and python3 binaries at the front of PATH and
// returns the path of the invocation log the cmake stub appends to.
//
// The cmake stub answers --version, creates out/libosqp.a, out/osqp.lib and
// out/Release/osqp.lib on --build (unless failBuild is set, in which case the
// build step exits 1 and produces nothing), and succeeds on everything else.
func stubTools(t *testing.T, failBuild bool) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tool stubs require a POSIX shell")
	}

	binDir := t.TempDir()
	logFile := filepath.Join(binDir, "invocations.log")

	buildAction := "mkdir -p out/Release && : > out/libosqp.a && : > out/osqp.lib && : > out/Release/osqp.lib"
	if failBuild {
		buildAction = "exit 1"
	}

	cmake := fmt.Sprintf(`#!/bin/sh
echo "cmake $@" >> %q
if [ "$1" = "--version" ]; then
  echo "cmake version 3.99.0"
  exit 0
fi
if [ "$1" = "--build" ]; then
  %s
fi
exit 0
`, logFile, buildAction)

	python := `#!/bin/sh
case "$*" in
  *numpy*) echo /stub/numpy/include ;;
  *sysconfig*) echo /stub/python/include ;;
  *sys.executable*) echo "$0" ;;
esac
exit 0
`

	for name, content := range map[string]string{"cmake": cmake, "python3": python} {
		path := filepath.Join(binDir, name)
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			t.Fatalf("failed to write %s stub: %v", name, err)
		}
	}

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+"/bin"+string(os.PathListSeparator)+"/usr/bin")
	return logFile
}

func readLog(t *testing.T, logFile string) string {
	t.Helper()
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read invocation log: %v", err)
	}
	return string(data)
}

func legacyTestDescriptor(t *testing.T) *ExtensionDescriptor {
	t.Helper()
	root := t.TempDir()
	return &ExtensionDescriptor{
		Name:            "osqp._osqp",
		Strategy:        StrategyLegacy,
		SolverRoot:      filepath.Join(root, "osqp_sources"),
		BuildDir:        filepath.Join(root, "osqp_sources", "build"),
		SourceDir:       filepath.Join(root, "src", "extension", "src"),
		IncludeResolver: func() (string, error) { return "/stub/numpy/include", nil },
	}
}

func TestLegacyBuildStagesArchive(t *testing.T) {
	logFile := stubTools(t, false)
	desc := legacyTestDescriptor(t)

	profile := testProfile(t, "linux")
	engine := NewEngine(profile, BuildOptions{})

	result, err := engine.Build(context.Background(), desc)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected successful result")
	}

	staged := filepath.Join(desc.SourceDir, "libosqp.a")
	if _, err := os.Stat(staged); err != nil {
		t.Fatalf("expected archive staged at %s: %v", staged, err)
	}
	if result.Artifact != staged {
		t.Errorf("artifact = %q, want %q", result.Artifact, staged)
	}

	log := readLog(t, logFile)
	for _, want := range []string{
		"-DUNITTESTS=OFF",
		"-DPYTHON=ON",
		"-DDLONG=OFF",
		"-DPYTHON_INCLUDE_DIRS=/stub/python/include",
		"--target osqpstatic",
		"-DBUILD_TESTING=OFF",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("expected %q in cmake invocations:\n%s", want, log)
		}
	}

	absRoot, _ := filepath.Abs(desc.SolverRoot)
	if !strings.Contains(log, absRoot) {
		t.Errorf("expected configure step to target %s:\n%s", absRoot, log)
	}
}

func TestLegacyBuildFailureIsReportedAsBuildFailure(t *testing.T) {
	stubTools(t, true)
	desc := legacyTestDescriptor(t)

	engine := NewEngine(testProfile(t, "linux"), BuildOptions{})

	result, err := engine.Build(context.Background(), desc)
	if err == nil {
		t.Fatal("expected build failure")
	}
	if result.Success {
		t.Error("expected unsuccessful result")
	}

	var buildErr *ExternalBuildFailureError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected ExternalBuildFailureError, got %T: %v", err, err)
	}
	if buildErr.Stage != "build" {
		t.Errorf("failure stage = %q, want build", buildErr.Stage)
	}

	// The true cause must never be masked by a downstream copy failure.
	var notFound *ArtifactNotFoundError
	if errors.As(err, &notFound) {
		t.Error("build failure reported as ArtifactNotFoundError")
	}
}

func TestLegacyMissingToolFailsBeforeBuildDirRecreation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH manipulation requires a POSIX shell")
	}
	t.Setenv("PATH", t.TempDir()) // no cmake anywhere

	desc := legacyTestDescriptor(t)
	sentinel := filepath.Join(desc.BuildDir, "previous-run.txt")
	if err := os.MkdirAll(desc.BuildDir, 0o755); err != nil {
		t.Fatalf("failed to create build dir: %v", err)
	}
	if err := os.WriteFile(sentinel, []byte("keep"), 0o644); err != nil {
		t.Fatalf("failed to write sentinel: %v", err)
	}

	engine := NewEngine(testProfile(t, "linux"), BuildOptions{})

	_, err := engine.Build(context.Background(), desc)
	var missing *ToolchainMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected ToolchainMissingError, got %T: %v", err, err)
	}

	if _, err := os.Stat(sentinel); err != nil {
		t.Error("build directory was recreated despite missing toolchain")
	}
}

func TestLegacyCollectReportsMissingArchive(t *testing.T) {
	desc := legacyTestDescriptor(t)
	if err := os.MkdirAll(desc.BuildDir, 0o755); err != nil {
		t.Fatalf("failed to create build dir: %v", err)
	}

	engine := NewEngine(testProfile(t, "linux"), BuildOptions{})

	err := engine.legacyCollect(desc, &BuildResult{Target: desc.Name})
	var notFound *ArtifactNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ArtifactNotFoundError, got %T: %v", err, err)
	}
	if notFound.Target != desc.Name {
		t.Errorf("error target = %q, want %q", notFound.Target, desc.Name)
	}
}

func TestDirectBuildPlacesModuleInOutputDir(t *testing.T) {
	logFile := stubTools(t, false)
	root := t.TempDir()

	desc := &ExtensionDescriptor{
		Name:      "osqp.ext",
		Strategy:  StrategyDirect,
		SourceDir: filepath.Join(root, "ext"),
		BuildDir:  filepath.Join(root, "build", "ext"),
		OutputDir: filepath.Join(root, "src", "osqp"),
	}

	engine := NewEngine(testProfile(t, "linux"), BuildOptions{Parallel: 4})

	result, err := engine.Build(context.Background(), desc)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	wantOut, _ := filepath.Abs(desc.OutputDir)
	if result.Artifact != wantOut {
		t.Errorf("artifact = %q, want %q", result.Artifact, wantOut)
	}
	if _, err := os.Stat(wantOut); err != nil {
		t.Errorf("expected output dir created: %v", err)
	}

	log := readLog(t, logFile)
	for _, want := range []string{
		"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + wantOut,
		"-DCMAKE_BUILD_TYPE=Release",
		"-DPYTHON_EXECUTABLE=",
		"--build . --config Release -- -j4",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("expected %q in cmake invocations:\n%s", want, log)
		}
	}
}

func TestLegacyBuildWindowsProfile(t *testing.T) {
	logFile := stubTools(t, false)
	desc := legacyTestDescriptor(t)

	profile := testProfile(t, "windows")
	engine := NewEngine(profile, BuildOptions{})

	result, err := engine.Build(context.Background(), desc)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	// The archive comes out of the per-config subdirectory under Windows.
	staged := filepath.Join(desc.SourceDir, "osqp.lib")
	if _, err := os.Stat(staged); err != nil {
		t.Fatalf("expected archive staged at %s: %v", staged, err)
	}
	if result.Artifact != staged {
		t.Errorf("artifact = %q, want %q", result.Artifact, staged)
	}

	log := readLog(t, logFile)
	for _, want := range []string{
		profile.Generator,
		"--target osqpstatic",
		"--config Release",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("expected %q in cmake invocations:\n%s", want, log)
		}
	}
}

func TestDirectBuildWindowsProfile(t *testing.T) {
	logFile := stubTools(t, false)
	root := t.TempDir()

	desc := &ExtensionDescriptor{
		Name:      "osqp.ext",
		Strategy:  StrategyDirect,
		SourceDir: filepath.Join(root, "ext"),
		BuildDir:  filepath.Join(root, "build", "ext"),
		OutputDir: filepath.Join(root, "src", "osqp"),
	}

	profile := testProfile(t, "windows")
	engine := NewEngine(profile, BuildOptions{Parallel: 4})

	if _, err := engine.Build(context.Background(), desc); err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	wantOut, _ := filepath.Abs(desc.OutputDir)
	log := readLog(t, logFile)

	want := []string{
		"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY_RELEASE=" + wantOut,
		"--build . --config Release -- /m",
	}
	if profile.SixtyFourBit {
		want = append(want, "-A x64")
	}
	for _, w := range want {
		if !strings.Contains(log, w) {
			t.Errorf("expected %q in cmake invocations:\n%s", w, log)
		}
	}

	// Multi-config generators take the per-config directory, not a build type.
	if strings.Contains(log, "-DCMAKE_BUILD_TYPE") {
		t.Errorf("unexpected -DCMAKE_BUILD_TYPE for Windows profile:\n%s", log)
	}
}

func TestBuildAllStopsAtFirstFailure(t *testing.T) {
	stubTools(t, true)

	descs := []*ExtensionDescriptor{
		legacyTestDescriptor(t),
		legacyTestDescriptor(t),
	}

	engine := NewEngine(testProfile(t, "linux"), BuildOptions{})

	results, err := engine.BuildAll(context.Background(), descs)
	if err == nil {
		t.Fatal("expected error from failing build")
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result before stopping, got %d", len(results))
	}
}

func TestBuildAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(testProfile(t, "linux"), BuildOptions{})

	results, err := engine.BuildAll(ctx, []*ExtensionDescriptor{legacyTestDescriptor(t)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) != 1 || results[0].Error == nil {
		t.Fatalf("expected one canceled result, got %+v", results)
	}
}

func TestBuildRejectsUnknownStrategy(t *testing.T) {
	engine := NewEngine(testProfile(t, "linux"), BuildOptions{})

	_, err := engine.Build(context.Background(), &ExtensionDescriptor{
		Name:     "osqp.bogus",
		Strategy: BuildStrategy(42),
	})
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestRunStagesShortCircuits(t *testing.T) {
	engine := NewEngine(testProfile(t, "linux"), BuildOptions{})

	var order []string
	stageErr := errors.New("configure blew up")
	stages := buildStages{
		PrepareFunc: func(context.Context, *ExtensionDescriptor, *BuildResult) error {
			order = append(order, "prepare")
			return nil
		},
		ConfigureFunc: func(context.Context, *ExtensionDescriptor, *BuildResult) error {
			order = append(order, "configure")
			return stageErr
		},
		BuildFunc: func(context.Context, *ExtensionDescriptor, *BuildResult) error {
			order = append(order, "build")
			return nil
		},
		CollectFunc: func(*ExtensionDescriptor, *BuildResult) error {
			order = append(order, "collect")
			return nil
		},
	}

	result, err := engine.runStages(context.Background(), &ExtensionDescriptor{Name: "osqp._osqp"}, stages)
	if !errors.Is(err, stageErr) {
		t.Fatalf("expected stage error, got %v", err)
	}
	if result.Success {
		t.Error("expected unsuccessful result")
	}
	if strings.Join(order, ",") != "prepare,configure" {
		t.Errorf("stage order = %v, want prepare,configure only", order)
	}
}

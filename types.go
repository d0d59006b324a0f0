package osqpext

import (
	"io"
	"log/slog"
)

// BuildOptions carries the process-wide build parameters.
//
// The struct is resolved exactly once at process start (CLI flags, environment
// variables) and passed by value into every component; no component consults
// ambient global state.
//
// Integer width:
//   - LongInts: keep 64-bit solver indices. The default (false) narrows to
//     32-bit indices so solver matrices stay compatible with NumPy's native
//     integer width. This is a correctness default, not a preference.
//
// Build mode:
//   - Debug: compile with -g and CMAKE_BUILD_TYPE=Debug instead of -O3/Release
//   - Parallel: job count for the direct strategy's build step (0 = default)
//
// Host overrides (tests only; zero values mean "detect from the runtime"):
//   - GOOS: operating system identity override
//   - Narrow: force a 32-bit host profile
type BuildOptions struct {
	LongInts bool // Use 64-bit solver integer indices
	Debug    bool // Compile extensions in debug mode
	Verbose  bool // Echo external tool invocations

	Parallel int // Parallel jobs for the direct strategy (0 = default)

	// Python is the interpreter binary used for the NumPy include lookup and
	// handed to the direct strategy's configure step. Empty means "python3".
	Python string

	Env map[string]string // Extra environment variables for tool invocations

	// Host identity overrides for tests.
	GOOS   string
	Narrow bool

	// Logger receives per-stage progress records. Nil disables logging.
	Logger *slog.Logger
}

// PythonInterpreter returns the interpreter binary to invoke.
func (o BuildOptions) PythonInterpreter() string {
	if o.Python != "" {
		return o.Python
	}
	return "python3"
}

func (o BuildOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// BuildResult contains the outcome of building one extension target.
type BuildResult struct {
	Target   string   // Extension target name (e.g. "osqp._osqp")
	Success  bool     // True if the target built without errors
	Output   []string // Lines of output from the external tool
	Artifact string   // Static archive (legacy) or module output dir (direct)
	Error    error    // Error if the build failed, nil otherwise
}

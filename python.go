package osqpext

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

// NumPyIncludeDir asks the interpreter for NumPy's C header directory.
//
// The lookup runs at build time, not at descriptor declaration time, so the
// descriptors can be declared in an environment where NumPy is not installed
// yet. A missing NumPy is fatal for the caller: the shims cannot compile
// without the array headers.
func NumPyIncludeDir(interpreter string) (string, error) {
	out, err := sh.Output(interpreter, "-c", "import numpy; print(numpy.get_include())")
	if err != nil {
		return "", fmt.Errorf("numpy include lookup via %s failed: %w", interpreter, err)
	}
	dir := strings.TrimSpace(out)
	if dir == "" {
		return "", fmt.Errorf("numpy include lookup via %s returned no path", interpreter)
	}
	return dir, nil
}

// PythonIncludeDir asks the interpreter for its own C API header directory,
// passed to the solver's configure step as PYTHON_INCLUDE_DIRS.
func PythonIncludeDir(interpreter string) (string, error) {
	out, err := sh.Output(interpreter, "-c", "import sysconfig; print(sysconfig.get_paths()['include'])")
	if err != nil {
		return "", fmt.Errorf("interpreter include lookup via %s failed: %w", interpreter, err)
	}
	dir := strings.TrimSpace(out)
	if dir == "" {
		return "", fmt.Errorf("interpreter include lookup via %s returned no path", interpreter)
	}
	return dir, nil
}

// InterpreterPath resolves the interpreter binary to an absolute path for the
// direct strategy's PYTHON_EXECUTABLE setting.
func InterpreterPath(interpreter string) (string, error) {
	out, err := sh.Output(interpreter, "-c", "import sys; print(sys.executable)")
	if err != nil {
		return "", fmt.Errorf("resolving interpreter %s: %w", interpreter, err)
	}
	path := strings.TrimSpace(out)
	if path == "" {
		return "", fmt.Errorf("interpreter %s reported no executable path", interpreter)
	}
	return path, nil
}

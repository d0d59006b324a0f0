package osqpext

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// recreateDir removes dir if it exists and creates it empty. Destructive and
// idempotent; every destination the orchestrator writes into is rebuilt from
// empty so no stale file from a previous run can survive.
func recreateDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// copyFile copies src to destPath, creating parent directories and
// preserving the source file mode. An existing destination is overwritten.
func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

// listWithExt returns the names of regular files in dir with the given
// extension, excluding any name present in deny. Names are returned in the
// directory's sorted order.
func listWithExt(dir, ext string, deny map[string]struct{}) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ext) {
			continue
		}
		if _, denied := deny[name]; denied {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}

package osqpext

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Solver internals that generated-code builds never need: sparse-matrix ops,
// interrupt handling, solution polishing and the linear-system dispatch layer.
var codegenSourceDeny = map[string]struct{}{
	"cs.c":      {},
	"ctrlc.c":   {},
	"polish.c":  {},
	"lin_sys.c": {},
}

// Header denylist: the source denylist's companions plus the type and
// generated-configuration headers, which the codegen tool re-renders from the
// configure templates instead.
var codegenHeaderDeny = map[string]struct{}{
	"cs.h":             {},
	"ctrlc.h":          {},
	"polish.h":         {},
	"lin_sys.h":        {},
	"qdldl_types.h":    {},
	"osqp_configure.h": {},
}

// CopiedFile records one source-to-snapshot copy.
type CopiedFile struct {
	Source string `yaml:"source"`
	Dest   string `yaml:"dest"`
}

// CodegenManifest lists every file placed into a codegen snapshot, grouped by
// destination subtree.
type CodegenManifest struct {
	Dest      string       `yaml:"dest"`
	Sources   []CopiedFile `yaml:"sources"`
	Headers   []CopiedFile `yaml:"headers"`
	Configure []CopiedFile `yaml:"configure"`
}

// Write serializes the manifest as YAML. The path must lie outside the
// snapshot tree itself; the snapshot contains only the files the allowlist
// computation admits.
func (m *CodegenManifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PrepareCodegen assembles the codegen source snapshot for one solver
// generation under dest.
//
// The destination is recreated from empty, then populated with three flat
// subtrees:
//
//   - src:       solver .c files minus the internals denylist, plus the
//     direct linear-solver's own .c files, plus src/CMakeLists.txt
//   - include:   the mirrored .h selection plus include/CMakeLists.txt
//   - configure: the solver configuration template and the linear-solver
//     type template
//
// A missing expected file or directory aborts with SourceAssetMissingError.
// Because the destination is rebuilt from empty every run, a failed run
// leaves no partial snapshot that a retry would have to reconcile.
func PrepareCodegen(layout SolverLayout, dest string) (*CodegenManifest, error) {
	if err := recreateDir(dest); err != nil {
		return nil, err
	}

	manifest := &CodegenManifest{Dest: dest}
	qdldl := layout.QDLDLDir()

	srcDest := filepath.Join(dest, "src")
	sources, err := copyFiltered(srcDest, []filteredDir{
		{dir: filepath.Join(layout.Root, "src"), ext: ".c", deny: codegenSourceDeny},
		{dir: qdldl, ext: ".c", deny: codegenSourceDeny},
		{dir: filepath.Join(qdldl, "qdldl_sources", "src"), ext: ".c", deny: codegenSourceDeny},
	})
	if err != nil {
		return nil, err
	}
	manifest.Sources = sources

	incDest := filepath.Join(dest, "include")
	headers, err := copyFiltered(incDest, []filteredDir{
		{dir: filepath.Join(layout.Root, "include"), ext: ".h", deny: codegenHeaderDeny},
		{dir: qdldl, ext: ".h", deny: codegenHeaderDeny},
		{dir: filepath.Join(qdldl, "qdldl_sources", "include"), ext: ".h", deny: codegenHeaderDeny},
	})
	if err != nil {
		return nil, err
	}
	manifest.Headers = headers

	confDest := filepath.Join(dest, "configure")
	if err := os.MkdirAll(confDest, 0o755); err != nil {
		return nil, err
	}
	templates := []string{
		filepath.Join(layout.Root, "configure", "osqp_configure.h.in"),
		filepath.Join(qdldl, "qdldl_sources", "configure", "qdldl_types.h.in"),
	}
	for _, tmpl := range templates {
		copied, err := copyInto(tmpl, confDest)
		if err != nil {
			return nil, err
		}
		manifest.Configure = append(manifest.Configure, copied)
	}

	// Build descriptions for the copied subtrees.
	for _, pair := range []struct{ src, destDir string }{
		{filepath.Join(layout.Root, "src", "CMakeLists.txt"), srcDest},
		{filepath.Join(layout.Root, "include", "CMakeLists.txt"), incDest},
	} {
		copied, err := copyInto(pair.src, pair.destDir)
		if err != nil {
			return nil, err
		}
		if pair.destDir == srcDest {
			manifest.Sources = append(manifest.Sources, copied)
		} else {
			manifest.Headers = append(manifest.Headers, copied)
		}
	}

	return manifest, nil
}

// filteredDir names one directory contributing files to a snapshot subtree.
type filteredDir struct {
	dir  string
	ext  string
	deny map[string]struct{}
}

// copyFiltered recreates destDir and copies the allowlisted files from each
// contributing directory into it, flat.
func copyFiltered(destDir string, contributors []filteredDir) ([]CopiedFile, error) {
	if err := recreateDir(destDir); err != nil {
		return nil, err
	}

	var copied []CopiedFile
	for _, c := range contributors {
		names, err := listWithExt(c.dir, c.ext, c.deny)
		if err != nil {
			return nil, &SourceAssetMissingError{Path: c.dir, Err: err}
		}
		for _, name := range names {
			src := filepath.Join(c.dir, name)
			dst := filepath.Join(destDir, name)
			if err := copyFile(src, dst); err != nil {
				return nil, &SourceAssetMissingError{Path: src, Err: err}
			}
			copied = append(copied, CopiedFile{Source: src, Dest: dst})
		}
	}

	return copied, nil
}

// copyInto copies a single required file into destDir under its base name.
func copyInto(src, destDir string) (CopiedFile, error) {
	dst := filepath.Join(destDir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return CopiedFile{}, &SourceAssetMissingError{Path: src, Err: err}
	}
	return CopiedFile{Source: src, Dest: dst}, nil
}

package osqpext

import (
	"runtime"
	"strconv"
)

// Platform identifiers
const (
	platformWindows = "windows"
	platformLinux   = "linux"
	platformDarwin  = "darwin"

	unixMakefiles   = "Unix Makefiles"
	visualStudio    = "Visual Studio 14 2015"
	staticLibUnix   = "libosqp.a"
	staticLibWin    = "osqp.lib"
	staticLibTarget = "osqpstatic"
)

// PlatformProfile holds the resolved toolchain parameters for the host.
//
// A profile is computed exactly once per run by ResolvePlatform and is never
// mutated afterwards; both the descriptor builder and the execution engine
// read from the same instance.
type PlatformProfile struct {
	OS           string   // windows, linux or darwin
	SixtyFourBit bool     // Host word size
	Generator    string   // CMake generator name
	ConfigArgs   []string // Arguments for the CMake configure step
	BuildFlags   []string // Extra arguments for the CMake build step
	Libraries    []string // Extra link libraries for the host tool's link step
	StaticLib    string   // Static archive filename (osqp.lib / libosqp.a)
	LibSubdir    string   // Config subdir under out/ ("Release" on Windows)
	CompileArgs  []string // Extra compiler flags for the shim sources
}

// ResolvePlatform inspects the host operating system and word size and
// returns the toolchain profile for it.
//
// The narrow-integer define (-DDLONG=OFF) is appended unless opts.LongInts is
// set; see BuildOptions for why narrowing is the default. An operating system
// outside the supported set yields an UnsupportedPlatformError.
func ResolvePlatform(opts BuildOptions) (*PlatformProfile, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	wide := strconv.IntSize == 64 && !opts.Narrow

	p := &PlatformProfile{
		OS:           goos,
		SixtyFourBit: wide,
		ConfigArgs:   []string{"-DUNITTESTS=OFF"},
	}

	switch goos {
	case platformWindows:
		p.Generator = visualStudio
		if wide {
			p.Generator += " Win64"
		}
		p.BuildFlags = []string{"--config", "Release"}
		p.StaticLib = staticLibWin
		p.LibSubdir = "Release"
		// The CRT moved stdio out of the import libraries; link the shim
		// against the compatibility library to resolve printf and friends.
		p.Libraries = []string{"legacy_stdio_definitions"}
	case platformLinux:
		p.Generator = unixMakefiles
		p.StaticLib = staticLibUnix
		p.Libraries = []string{"rt"}
	case platformDarwin:
		p.Generator = unixMakefiles
		p.StaticLib = staticLibUnix
	default:
		return nil, &UnsupportedPlatformError{OS: goos}
	}

	p.ConfigArgs = append(p.ConfigArgs, "-G", p.Generator)

	// Enable the language-binding build mode in the solver's CMake tree.
	p.ConfigArgs = append(p.ConfigArgs, "-DPYTHON=ON")

	// Narrow the solver's integer indices to 32 bits unless long indices were
	// requested; NumPy's default integer width cannot represent DLONG indices.
	if !opts.LongInts {
		p.ConfigArgs = append(p.ConfigArgs, "-DDLONG=OFF")
	}

	if goos != platformWindows {
		p.CompileArgs = append(p.CompileArgs, "-O3")
	}
	if opts.Debug {
		p.CompileArgs = append(p.CompileArgs, "-g")
		p.ConfigArgs = append(p.ConfigArgs, "-DCMAKE_BUILD_TYPE=Debug")
	}

	return p, nil
}

// BuildConfigName returns the CMake configuration name for the direct
// strategy: Debug when the host tool runs in debug mode, Release otherwise.
func BuildConfigName(opts BuildOptions) string {
	if opts.Debug {
		return "Debug"
	}
	return "Release"
}

// Package osqpext builds the OSQP solver's native extension modules and
// prepares the redistributable codegen source snapshot.
//
// The package orchestrates an external CMake toolchain for three extension
// targets across two parallel solver source generations:
//
//   - osqp._osqp  - first-generation solver, legacy strategy
//   - osqp.spam   - second-generation solver, legacy strategy
//   - osqp.ext    - pybind11-style target, direct strategy
//
// # Build Strategies
//
// Two strategies exist, selected by the Strategy tag on each
// ExtensionDescriptor:
//
//   - StrategyLegacy: CMake produces a static archive (osqp.lib / libosqp.a)
//     out-of-band, which is copied into the extension's shim source tree so
//     the host packaging tool can compile the C shim and link against it.
//   - StrategyDirect: CMake compiles, links and places the finished loadable
//     module itself; the host tool performs no compile step of its own.
//
// # Basic Usage
//
// Resolve the platform once, declare descriptors, then run the engine:
//
//	opts := osqpext.BuildOptions{Python: "python3"}
//	profile, err := osqpext.ResolvePlatform(opts)
//	if err != nil {
//	    return err
//	}
//
//	descs := osqpext.GenerationDescriptors(layout, profile, opts)
//
//	engine := osqpext.NewEngine(profile, opts)
//	results, err := engine.BuildAll(ctx, descs)
//
// The codegen snapshot is independent of the engine:
//
//	manifest, err := osqpext.PrepareCodegen(layout, destDir)
//
// # Failure Model
//
// Every failure is fatal: UnsupportedPlatformError, ToolchainMissingError,
// SourceAssetMissingError, ExternalBuildFailureError and ArtifactNotFoundError
// all abort the build. There is no partial-success mode; callers should exit
// non-zero on the first error.
//
// # Platform Support
//
// Windows (Visual Studio generator), Linux and macOS (Unix Makefiles).
// Builds for the two generations are strictly sequential and must not run
// concurrently against the same source tree.
package osqpext

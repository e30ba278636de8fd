// SPDX-License-Identifier: MPL-2.0

// Package toolchain runs external developer-tool processes (xcodebuild, swift)
// as blocking subprocesses.
//
// The Runner interface is the single seam between the release pipeline and the
// host toolchain: production code uses ExecRunner, tests substitute a fake that
// records invocations and fabricates the filesystem artifacts a real tool
// would produce. A non-zero exit is reported through Result.ExitCode, not
// through the error return; the error return is reserved for infrastructure
// failures (binary not found, context cancelled before start).
package toolchain

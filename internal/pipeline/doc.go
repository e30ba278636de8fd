// SPDX-License-Identifier: MPL-2.0

// Package pipeline sequences a full universal-framework release.
//
// A run forces the package manifest to dynamic linkage, resolves the target
// platform catalog, archives every (platform, variant) pair through the
// external toolchain, collects the artifacts into a staging tree, merges the
// tree into one universal bundle, and promotes the staging tree to the
// published release path with a single rename.
//
// The manifest mutation is a scoped transaction: it is reverted exactly once
// on every exit path, success or failure, via a deferred Revert. Every stage
// failure is fatal to the run; toolchain invocations are expensive and
// deterministic, so nothing is retried.
package pipeline

// SPDX-License-Identifier: MPL-2.0

// Command unipack builds a universal XCFramework release out of per-platform
// xcodebuild archives.
//
// The release subcommand drives the whole pipeline: it forces the Swift
// package manifest to dynamic linkage, archives every declared platform and
// its simulator, merges the results into one XCFramework, and publishes the
// staging tree to the release directory.
package main

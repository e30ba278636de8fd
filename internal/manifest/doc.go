// SPDX-License-Identifier: MPL-2.0

// Package manifest reads and rewrites the Swift package manifest.
//
// Two concerns live here:
//   - Catalog resolves the set of target platforms by running
//     `swift package dump-package` and parsing its JSON description. The host
//     platform (macos) is excluded because it is never cross-packaged into
//     the universal bundle.
//   - Apply/Transaction force every library product declaration in
//     Package.swift to dynamic linkage for the duration of a release run.
//     Apply snapshots the file and returns a Transaction whose Revert
//     restores it byte-for-byte; callers defer Revert so the manifest is
//     never left mutated, whichever way the run ends.
package manifest

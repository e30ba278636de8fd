// SPDX-License-Identifier: MPL-2.0

// Package archive drives one xcodebuild archive per (platform, variant) pair.
//
// The Builder invokes the toolchain with a fixed override set (Release
// configuration, code signing disabled, all architectures, library evolution
// on) and a destination resolved from a closed (platform, variant) table.
// After the archive completes, the Builder copies the produced swiftmodule
// out of the derived-data build products into the archive's framework, since
// the archiver does not embed the module interface itself.
package archive

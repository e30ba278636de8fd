// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"fmt"

	"github.com/unipack/unipack/internal/manifest"
)

// Variant distinguishes the device and simulator build of a platform.
type Variant string

const (
	// VariantDevice targets physical hardware.
	VariantDevice Variant = "device"
	// VariantSimulator targets the platform's simulator.
	VariantSimulator Variant = "simulator"
)

// Variants lists both build variants in build order.
var Variants = []Variant{VariantDevice, VariantSimulator}

// Destination is the toolchain target for one (platform, variant) pair.
type Destination struct {
	// Generic is the value passed as -destination generic/platform=<Generic>.
	Generic string
	// SDK names the Release-<SDK> directory inside the derived-data build
	// products where the swiftmodule lands.
	SDK string
}

// destinations is the closed lookup over platform × variant. Platforms the
// toolchain grows support for are added here and nowhere else.
var destinations = map[manifest.Platform]map[Variant]Destination{
	"ios": {
		VariantDevice:    {Generic: "iOS", SDK: "iphoneos"},
		VariantSimulator: {Generic: "iOS Simulator", SDK: "iphonesimulator"},
	},
	"watchos": {
		VariantDevice:    {Generic: "watchOS", SDK: "watchos"},
		VariantSimulator: {Generic: "watchOS Simulator", SDK: "watchsimulator"},
	},
	"tvos": {
		VariantDevice:    {Generic: "tvOS", SDK: "appletvos"},
		VariantSimulator: {Generic: "tvOS Simulator", SDK: "appletvsimulator"},
	},
	"visionos": {
		VariantDevice:    {Generic: "visionOS", SDK: "xros"},
		VariantSimulator: {Generic: "visionOS Simulator", SDK: "xrsimulator"},
	},
	// macOS has no simulator counterpart.
	"macos": {
		VariantDevice: {Generic: "macOS", SDK: "macosx"},
	},
}

// DestinationFor resolves the toolchain destination for a (platform, variant)
// pair. An unmapped combination is an error at resolution time, before any
// expensive toolchain invocation is issued.
func DestinationFor(platform manifest.Platform, variant Variant) (Destination, error) {
	byVariant, ok := destinations[platform]
	if !ok {
		return Destination{}, fmt.Errorf("no toolchain destination for platform %q", platform)
	}
	dest, ok := byVariant[variant]
	if !ok {
		return Destination{}, fmt.Errorf("no %s destination for platform %q", variant, platform)
	}
	return dest, nil
}

// HasSimulator reports whether the platform has a simulator counterpart.
func HasSimulator(platform manifest.Platform) bool {
	_, ok := destinations[platform][VariantSimulator]
	return ok
}

// ValidateCatalog checks that every (platform, variant) pair the catalog
// implies is mapped, so a lookup miss surfaces before the first archive
// rather than mid-run.
func ValidateCatalog(platforms []manifest.Platform) error {
	for _, p := range platforms {
		if _, err := DestinationFor(p, VariantDevice); err != nil {
			return err
		}
		if HasSimulator(p) {
			continue
		}
		if p != manifest.HostPlatform {
			return fmt.Errorf("no %s destination for platform %q", VariantSimulator, p)
		}
	}
	return nil
}

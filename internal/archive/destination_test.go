// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"testing"

	"github.com/unipack/unipack/internal/manifest"
)

func TestDestinationFor_KnownPairs(t *testing.T) {
	tests := []struct {
		platform manifest.Platform
		variant  Variant
		generic  string
		sdk      string
	}{
		{"ios", VariantDevice, "iOS", "iphoneos"},
		{"ios", VariantSimulator, "iOS Simulator", "iphonesimulator"},
		{"watchos", VariantDevice, "watchOS", "watchos"},
		{"watchos", VariantSimulator, "watchOS Simulator", "watchsimulator"},
		{"tvos", VariantDevice, "tvOS", "appletvos"},
		{"tvos", VariantSimulator, "tvOS Simulator", "appletvsimulator"},
		{"macos", VariantDevice, "macOS", "macosx"},
	}

	for _, tt := range tests {
		dest, err := DestinationFor(tt.platform, tt.variant)
		if err != nil {
			t.Errorf("DestinationFor(%s, %s) error = %v", tt.platform, tt.variant, err)
			continue
		}
		if dest.Generic != tt.generic || dest.SDK != tt.sdk {
			t.Errorf("DestinationFor(%s, %s) = %+v, want {%s %s}",
				tt.platform, tt.variant, dest, tt.generic, tt.sdk)
		}
	}
}

func TestDestinationFor_UnknownPlatform(t *testing.T) {
	if _, err := DestinationFor("linux", VariantDevice); err == nil {
		t.Error("DestinationFor(linux) error = nil, want lookup error")
	}
}

func TestDestinationFor_MacOSHasNoSimulator(t *testing.T) {
	if _, err := DestinationFor("macos", VariantSimulator); err == nil {
		t.Error("DestinationFor(macos, simulator) error = nil, want lookup error")
	}
	if HasSimulator("macos") {
		t.Error("HasSimulator(macos) = true, want false")
	}
	if !HasSimulator("ios") {
		t.Error("HasSimulator(ios) = false, want true")
	}
}

func TestValidateCatalog(t *testing.T) {
	if err := ValidateCatalog([]manifest.Platform{"ios", "watchos", "tvos"}); err != nil {
		t.Errorf("ValidateCatalog(known) error = %v", err)
	}
	if err := ValidateCatalog([]manifest.Platform{"ios", "freebsd"}); err == nil {
		t.Error("ValidateCatalog(unknown) error = nil, want lookup error")
	}
}

func TestKey(t *testing.T) {
	if got := Key("ios", VariantDevice); got != "ios" {
		t.Errorf("Key(ios, device) = %q, want %q", got, "ios")
	}
	if got := Key("watchos", VariantSimulator); got != "watchossimulator" {
		t.Errorf("Key(watchos, simulator) = %q, want %q", got, "watchossimulator")
	}
}

// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/unipack/unipack/internal/archive"
	"github.com/unipack/unipack/internal/manifest"
	"github.com/unipack/unipack/internal/staging"
	"github.com/unipack/unipack/internal/toolchain"
	"github.com/unipack/unipack/internal/toolchain/toolchaintest"
)

// stagePair creates the staged framework and dSYM directories for a pair.
func stagePair(t *testing.T, tree staging.Tree, platform manifest.Platform, variant archive.Variant, library string) {
	t.Helper()
	for _, dir := range []string{
		tree.FrameworkPath(platform, variant, library),
		tree.DSYMPath(platform, variant, library),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
}

func TestMerger_MergeSuccess(t *testing.T) {
	tree := staging.Tree{Root: t.TempDir()}
	for _, p := range []manifest.Platform{"ios", "watchos"} {
		stagePair(t, tree, p, archive.VariantDevice, "MyLib")
		stagePair(t, tree, p, archive.VariantSimulator, "MyLib")
	}

	runner := &toolchaintest.FakeRunner{}
	m := NewMerger(runner, "", nil)

	bundle, err := m.Merge(context.Background(), tree, []manifest.Platform{"ios", "watchos"}, "MyLib")
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if bundle != tree.BundlePath("MyLib") {
		t.Errorf("bundle = %q, want %q", bundle, tree.BundlePath("MyLib"))
	}

	invs := runner.Invocations()
	if len(invs) != 1 {
		t.Fatalf("invocations = %d, want exactly one merge call", len(invs))
	}

	args := invs[0].Args
	if args[0] != "-create-xcframework" {
		t.Errorf("Args[0] = %q, want -create-xcframework", args[0])
	}
	// Two platforms x two variants: four framework/debug-symbol pairs.
	if n := countOccurrences(args, "-framework"); n != 4 {
		t.Errorf("-framework count = %d, want 4", n)
	}
	if n := countOccurrences(args, "-debug-symbols"); n != 4 {
		t.Errorf("-debug-symbols count = %d, want 4", n)
	}
	if !slices.Contains(args, "-output") {
		t.Errorf("Args missing -output: %v", args)
	}
}

func TestMerger_SkipsSimulatorForMacOS(t *testing.T) {
	tree := staging.Tree{Root: t.TempDir()}
	stagePair(t, tree, "macos", archive.VariantDevice, "MyLib")

	runner := &toolchaintest.FakeRunner{}
	m := NewMerger(runner, "", nil)

	if _, err := m.Merge(context.Background(), tree, []manifest.Platform{"macos"}, "MyLib"); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	args := runner.Invocations()[0].Args
	if n := countOccurrences(args, "-framework"); n != 1 {
		t.Errorf("-framework count = %d, want 1 (no simulator pair for macos)", n)
	}
}

func TestMerger_IncompletePlatformSet(t *testing.T) {
	tree := staging.Tree{Root: t.TempDir()}
	stagePair(t, tree, "ios", archive.VariantDevice, "MyLib")
	// Simulator leaf deliberately missing.

	runner := &toolchaintest.FakeRunner{}
	m := NewMerger(runner, "", nil)

	_, err := m.Merge(context.Background(), tree, []manifest.Platform{"ios"}, "MyLib")
	if !errors.Is(err, ErrIncompletePlatformSet) {
		t.Fatalf("Merge() error = %v, want ErrIncompletePlatformSet", err)
	}
	if runner.Count() != 0 {
		t.Errorf("bundling tool invoked %d times despite incomplete set", runner.Count())
	}
}

func TestMerger_MergeFailed(t *testing.T) {
	tree := staging.Tree{Root: t.TempDir()}
	stagePair(t, tree, "ios", archive.VariantDevice, "MyLib")
	stagePair(t, tree, "ios", archive.VariantSimulator, "MyLib")

	runner := &toolchaintest.FakeRunner{
		Handler: func(toolchain.Invocation) toolchaintest.Response {
			return toolchaintest.Response{
				Result: &toolchain.Result{ExitCode: 70, ErrOutput: "error: binaries with multiple platforms\n"},
			}
		},
	}
	m := NewMerger(runner, "", nil)

	_, err := m.Merge(context.Background(), tree, []manifest.Platform{"ios"}, "MyLib")
	if !errors.Is(err, ErrMergeFailed) {
		t.Errorf("Merge() error = %v, want ErrMergeFailed", err)
	}
}

func countOccurrences(args []string, want string) int {
	n := 0
	for _, a := range args {
		if a == want {
			n++
		}
	}
	return n
}
